package controllers

import (
	"devflow/authentication"
	"devflow/environment"
	"devflow/helpers"
	"devflow/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddAnswer posts an answer to a question
// format => POST http://localhost:3000/questions/:id/answers
func AddAnswer(c *gin.Context) {

	var apiError ErrorResponse

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Content string `json:"content" binding:"required"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	answer := models.Answer{
		QuestionID: helpers.ObjectID(c.Param("id")),
		Content:    data.Content,
		AuthorID:   helpers.ObjectID(userID),
	}

	id, err := environment.Env.AnswerModel.CreateAnswer(&answer)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// ListAnswers returns a page of a question's answers
// format => http://localhost:3000/questions/:id/answers?filter=oldest&page=2
func ListAnswers(c *gin.Context) {

	var search models.AnswerSearch
	search.QuestionID = c.Param("id")
	search.Filter = c.Query("filter")
	search.Page = parsePage(c)

	answers, hasNext, err := environment.Env.AnswerModel.ListByQuestion(&search)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: answers, HasNext: hasNext})
}

// GetAnswer returns one answer
func GetAnswer(c *gin.Context) {

	answer, err := environment.Env.AnswerModel.GetAnswer(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, answer)
}
