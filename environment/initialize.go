package environment

import (
	"devflow/analytics"
	"devflow/client"
	"devflow/database"
	"devflow/models"
	"os"

	"github.com/go-redis/redis/v8"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker          *analytics.Tracker
	Requests         *client.Registry
	UserModel        models.UserModel
	QuestionModel    models.QuestionModel
	AnswerModel      models.AnswerModel
	TagModel         models.TagModel
	VoteModel        models.VoteModel
	InteractionModel models.InteractionModel
}

// newEnv operates as the constructor to initialize the collection
// references and to inject the cross-model functions (private)
func newEnv(mongoClient *mongo.Client, redisClient *redis.Client, influxClient *influxdb2.Client) *Environment {
	env := &Environment{}

	db := mongoClient.Database(os.Getenv("DB_NAME"))

	// client request registry (page-refresh detection)
	env.Requests = new(client.Registry)
	env.Requests.Initialize()

	// prepare analytics gathering (profile visits)
	// always create the object so no further checking is needed elsewhere
	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnections(influxClient, map[string]*mongo.Collection{
		database.CollectionQuestions: db.Collection(database.CollectionQuestions),
		database.CollectionUsers:     db.Collection(database.CollectionUsers),
	})
	// the influx client only exists when analytics is switched on;
	// the tracker's methods no-op without it
	if os.Getenv("USE_ANALYTICS") == "YES" {
		env.Tracker.VisitorAPI = database.InfluxAPI{
			WriteAPI:  (*influxClient).WriteAPIBlocking(os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_VISITORS_BUCKET")),
			QueryAPI:  (*influxClient).QueryAPI(os.Getenv("ANALYTICS_ORG")),
			DeleteAPI: (*influxClient).DeleteAPI(),
		}
	}

	env.InteractionModel.Collection = db.Collection(database.CollectionInteractions)

	env.TagModel.Collection = db.Collection(database.CollectionTags)
	env.TagModel.ListInteractions = env.InteractionModel.ListByUser

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = db.Collection(database.CollectionUsers)
	env.UserModel.Record = env.InteractionModel.Record

	env.QuestionModel.Client = mongoClient
	env.QuestionModel.Collection = db.Collection(database.CollectionQuestions)
	env.QuestionModel.Cache = redisClient
	env.QuestionModel.GetUserNameOID = env.UserModel.GetUserNameOID
	env.QuestionModel.FindOrCreateTag = env.TagModel.FindOrCreateTag
	env.QuestionModel.GetTag = env.TagModel.GetTag
	env.QuestionModel.TagNames = env.TagModel.TagNames
	env.QuestionModel.Record = env.InteractionModel.Record
	env.QuestionModel.ListInteractions = env.InteractionModel.ListByUser
	env.QuestionModel.IncrementReputation = env.UserModel.IncrementReputation
	env.QuestionModel.GetSavedIDs = env.UserModel.GetSavedIDs
	env.QuestionModel.DeleteInteractions = env.InteractionModel.DeleteByQuestion
	env.QuestionModel.DetachFromTags = env.TagModel.DetachQuestion

	env.AnswerModel.Collection = db.Collection(database.CollectionAnswers)
	env.AnswerModel.GetQuestionTags = env.QuestionModel.GetQuestionTags
	env.AnswerModel.AttachAnswer = env.QuestionModel.AttachAnswer
	env.AnswerModel.Record = env.InteractionModel.Record
	env.AnswerModel.IncrementReputation = env.UserModel.IncrementReputation
	env.AnswerModel.GetUserNameOID = env.UserModel.GetUserNameOID

	// these close the loops, so they are injected after both models exist
	env.QuestionModel.DeleteAnswers = env.AnswerModel.DeleteByQuestion
	env.UserModel.CountQuestions = env.QuestionModel.CountByAuthor
	env.UserModel.CountAnswers = env.AnswerModel.CountByAuthor
	env.UserModel.GetQuestionTags = env.QuestionModel.GetQuestionTags
	env.UserModel.DeleteQuestions = env.QuestionModel.DeleteQuestionsByAuthor

	env.VoteModel.QuestionCollection = db.Collection(database.CollectionQuestions)
	env.VoteModel.AnswerCollection = db.Collection(database.CollectionAnswers)
	env.VoteModel.IncrementReputation = env.UserModel.IncrementReputation
	env.VoteModel.GetQuestionTags = env.QuestionModel.GetQuestionTags
	env.VoteModel.Record = env.InteractionModel.Record

	// inject user model function to the analytics tracker
	env.Tracker.GetUserName = env.UserModel.GetUserName

	return env
}

// Env is the singleton registry
var Env *Environment

// InitializeModels injects the database connections to the models
// (do not confuse with package init)
func InitializeModels() {
	Env = newEnv(database.GetConnection(), database.GetRedisConnection(), database.GetInfluxConnection())
}
