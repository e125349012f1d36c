package controllers

import (
	"devflow/analytics"
	"devflow/authentication"
	"devflow/environment"
	"devflow/helpers"
	"devflow/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUser returns a user's profile and counts the visit
func GetUser(c *gin.Context) {

	var id = c.Param("id")

	// error maybe ignored here, profiles are public
	visitorID, _ := authentication.Authenticate(c.Request)

	user, err := environment.Env.UserModel.GetUserByID(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if environment.Env.Requests.Continue(c.ClientIP(), id) {
		environment.Env.Tracker.SaveVisitor(analytics.DomainUser, id, visitorID)
	}

	c.JSON(http.StatusOK, user)
}

// GetUserByClerkID resolves an identity-provider subject id to the user
// record (called by clients after an external sign-in)
func GetUserByClerkID(c *gin.Context) {

	user, err := environment.Env.UserModel.GetUserByClerkID(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUserStats returns the profile summary with derived content counts
func GetUserStats(c *gin.Context) {

	stats, err := environment.Env.UserModel.GetUserStats(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListUserQuestions returns a page of the questions a user asked
// format => http://localhost:3000/users/:id/questions?page=2
func ListUserQuestions(c *gin.Context) {

	items, hasNext, err := environment.Env.QuestionModel.QuestionsByAuthor(
		helpers.ObjectID(c.Param("id")), parsePage(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: items, HasNext: hasNext})
}

// ListUserAnswers returns a page of the answers a user gave
// format => http://localhost:3000/users/:id/answers?page=2
func ListUserAnswers(c *gin.Context) {

	answers, hasNext, err := environment.Env.AnswerModel.AnswersByAuthor(
		helpers.ObjectID(c.Param("id")), parsePage(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: answers, HasNext: hasNext})
}

// UpdateUser applies profile changes pushed by the identity provider's
// update webhook (like Register, keyed by the subject id)
func UpdateUser(c *gin.Context) {

	var apiError ErrorResponse

	// anonymous struct used to receive input (POST BODY)
	data := struct {
		Name         string `json:"name"`
		UserName     string `json:"username" binding:"required"`
		EMailAddress string `json:"eMail" binding:"required"`
		Picture      string `json:"picture"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err := environment.Env.UserModel.UpdateUser(
		c.Param("id"), data.Name, data.UserName, data.EMailAddress, data.Picture)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteUser removes an account and its questions (identity provider's
// delete webhook)
func DeleteUser(c *gin.Context) {

	err := environment.Env.UserModel.DeleteUser(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// ListUsers returns a page of the community
// format => http://localhost:3000/users?search=jsm&filter=top_contributors&page=2
func ListUsers(c *gin.Context) {

	var search models.UserSearch
	search.SearchTerm = c.Query("search")
	search.Filter = c.Query("filter")
	search.Page = parsePage(c)

	users, hasNext, err := environment.Env.UserModel.SearchUsers(&search)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: users, HasNext: hasNext})
}

// ToggleSave flips membership of a question in the user's saved collection
// format => POST http://localhost:3000/questions/:id/saved
func ToggleSave(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	saved, err := environment.Env.UserModel.ToggleSave(
		helpers.ObjectID(userID), helpers.ObjectID(c.Param("id")))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Saved bool `json:"saved"`
	}{saved}

	c.JSON(http.StatusOK, res)
}
