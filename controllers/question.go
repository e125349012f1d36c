package controllers

import (
	"devflow/analytics"
	"devflow/authentication"
	"devflow/environment"
	"devflow/helpers"
	"devflow/models"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePage reads the pagination params from the query string
// (a missing page defaults to 1, the page size is fixed server-side)
func parsePage(c *gin.Context) models.PageRequest {

	page, err := strconv.ParseInt(c.Query("page"), 10, 64)
	if err != nil {
		page = 1
	}

	return models.PageRequest{Page: page, PageSize: models.DefaultPageSize}
}

// AskQuestion creates a new question with its tags
// format => POST http://localhost:3000/questions
func AskQuestion(c *gin.Context) {

	var apiError ErrorResponse

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// anonymous struct used to receive input (POST BODY)
	data := struct {
		Title   string   `json:"title" binding:"required"`
		Content string   `json:"content" binding:"required"`
		Tags    []string `json:"tags" binding:"required"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	question, tagNames, err := environment.Env.QuestionModel.Validate(
		models.Question{Title: data.Title, Content: data.Content}, data.Tags)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// apply userID from token (username resolved in model)
	question.AuthorID = helpers.ObjectID(userID)

	id, err := environment.Env.QuestionModel.CreateQuestion(question, tagNames)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// GetQuestion returns the specified question and counts the view.
// A page refresh (same client, same question, checked via the request
// registry) is served without moving the counter.
func GetQuestion(c *gin.Context) {

	var id = c.Param("id")

	// error maybe ignored here, anonymous viewers get the question too
	userID, _ := authentication.Authenticate(c.Request)

	question, err := environment.Env.QuestionModel.GetQuestion(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if environment.Env.Requests.Continue(c.ClientIP(), id) {
		// a failed count never fails the page view
		_ = environment.Env.QuestionModel.CountView(question.ID, helpers.ObjectID(userID), question.TagIDs)
		environment.Env.Tracker.SaveVisitor(analytics.DomainQuestion, id, userID)
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions returns a page of questions
// format => http://localhost:3000/questions?search=docker&filter=newest&page=2
func ListQuestions(c *gin.Context) {

	var search models.QuestionSearch
	search.SearchTerm = c.Query("search")
	search.Filter = c.Query("filter")
	search.Page = parsePage(c)

	items, hasNext, err := environment.Env.QuestionModel.SearchQuestions(&search)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: items, HasNext: hasNext})
}

// ListRecommended returns a page of questions matching the tags of the
// user's interaction history
func ListRecommended(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	items, hasNext, err := environment.Env.QuestionModel.RecommendedQuestions(
		helpers.ObjectID(userID), c.Query("search"), parsePage(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: items, HasNext: hasNext})
}

// ListSaved returns a page of the user's saved questions
func ListSaved(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var search models.QuestionSearch
	search.SearchTerm = c.Query("search")
	search.Filter = c.Query("filter")
	search.Page = parsePage(c)

	items, hasNext, err := environment.Env.QuestionModel.SavedQuestions(helpers.ObjectID(userID), &search)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: items, HasNext: hasNext})
}

// ListByTag returns a page of a tag's questions
// format => http://localhost:3000/tags/:id/questions?search=...&page=2
func ListByTag(c *gin.Context) {

	tagID := helpers.ObjectID(c.Param("id"))

	tagName, items, hasNext, err := environment.Env.QuestionModel.QuestionsByTag(
		tagID, c.Query("search"), parsePage(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object including the resolved tag name
	res := struct {
		TagName string      `json:"tagName"`
		Items   interface{} `json:"items"`
		HasNext bool        `json:"hasNext"`
	}{tagName, items, hasNext}

	c.JSON(http.StatusOK, res)
}

// HotQuestions returns the sidebar list of the most viewed questions
func HotQuestions(c *gin.Context) {

	items, err := environment.Env.QuestionModel.HotQuestions()
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, items)
}

// EditQuestion updates title and content of an own question
func EditQuestion(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	data := struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}{}

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// only the author may edit
	question, err := environment.Env.QuestionModel.GetQuestion(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	if question.AuthorID != helpers.ObjectID(userID) {
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusForbidden, apiError)
		return
	}

	err = environment.Env.QuestionModel.EditQuestion(id, data.Title, data.Content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteQuestion removes an own question including answers, interactions
// and tag references
func DeleteQuestion(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	// only the author may delete
	question, err := environment.Env.QuestionModel.GetQuestion(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	if question.AuthorID != helpers.ObjectID(userID) {
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusForbidden, apiError)
		return
	}

	err = environment.Env.QuestionModel.DeleteQuestion(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
