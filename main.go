package main

import (
	"devflow/authentication"
	"devflow/controllers"
	"devflow/database"
	"devflow/environment"
	"devflow/middleware"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	router = gin.Default()
)

// called BEFORE main - note that the order of package inits is undefined!
func init() {
	// Load Config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // no middleware - the at may be expired here
	router.POST("/register", controllers.Register)

	router.POST("/user/exists", controllers.UserExists)
	router.POST("/email/exists", controllers.EMailExists)

	// user-mgmt
	router.GET("/users", controllers.ListUsers)
	router.GET("/users/:id", controllers.GetUser)
	router.GET("/users/:id/stats", controllers.GetUserStats)
	router.GET("/users/:id/tags", controllers.TopInteractedTags)
	router.GET("/users/:id/questions", controllers.ListUserQuestions)
	router.GET("/users/:id/answers", controllers.ListUserAnswers)
	// singular prefix to avoid a route conflict with /users/:id
	router.GET("/user/clerk/:id", controllers.GetUserByClerkID)
	// identity-provider webhooks (unauthenticated like /register)
	router.PUT("/user/clerk/:id", controllers.UpdateUser)
	router.DELETE("/user/clerk/:id", controllers.DeleteUser)
	router.GET("/collection", authentication.TokenAuthMiddleware(), controllers.ListSaved)

	// questions
	// GET has no BODY (Go/Gin & Postman would support it, Angular does not) - hence query params
	router.GET("/questions", controllers.ListQuestions)
	// singular prefix to avoid route conflicts with /questions/:id
	router.GET("/question/recommended", authentication.TokenAuthMiddleware(), controllers.ListRecommended)
	router.GET("/question/hot", controllers.HotQuestions)
	router.GET("/questions/:id", controllers.GetQuestion)
	router.POST("/questions", authentication.TokenAuthMiddleware(), controllers.AskQuestion)
	router.PUT("/questions/:id", authentication.TokenAuthMiddleware(), controllers.EditQuestion)
	router.DELETE("/questions/:id", authentication.TokenAuthMiddleware(), controllers.DeleteQuestion)
	router.POST("/questions/:id/saved", authentication.TokenAuthMiddleware(), controllers.ToggleSave)

	// answers
	router.GET("/questions/:id/answers", controllers.ListAnswers)
	router.POST("/questions/:id/answers", authentication.TokenAuthMiddleware(), controllers.AddAnswer)
	router.GET("/answers/:id", controllers.GetAnswer)

	// votes
	router.POST("/votes", authentication.TokenAuthMiddleware(), controllers.CastVote)

	// tags
	router.GET("/tags", controllers.ListTags)
	router.GET("/tags/:id", controllers.GetTag)
	router.GET("/tags/:id/questions", controllers.ListByTag)

	// analytics
	router.GET("/stats/visits", controllers.GetVisits)
	router.GET("/stats/visitors", controllers.ListVisitors)

	// ops
	router.GET("/monitor/requests/count", controllers.CountRequests)
	router.GET("/monitor/requests/dump", controllers.DumpRequests)
	router.POST("/monitor/requests/flush", controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV not set"))
	}
}

func main() {
	// connect to main database (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to JWT store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to cache (redis)
	err = database.OpenRedisConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseRedisConnection()

	// connect to analytics store (influxDB)
	if os.Getenv("USE_ANALYTICS") == "YES" {
		err = database.OpenInfluxConnection()
		if err != nil {
			log.Fatal(err)
		}
		defer database.CloseInfluxConnection()
	}

	// initialize the models
	environment.InitializeModels()

	// background maintenance: replicate aged visits and trim the request
	// registry
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			environment.Env.Tracker.Replicate()
			environment.Env.Requests.Flush()
		}
	}()

	fmt.Println("DevFlow API running...")
	handleRequests()
}
