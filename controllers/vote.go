package controllers

import (
	"devflow/authentication"
	"devflow/environment"
	"devflow/helpers"
	"devflow/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CastVote registers a new vote, flips an opposite one or removes a
// revoked one, and moves the voter's and the author's reputation
func CastVote(c *gin.Context) {

	var (
		err      error
		data     models.Vote
		apiError ErrorResponse
	)

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	receipt, err := environment.Env.VoteModel.CastVote(data, helpers.ObjectID(userID))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, receipt)
}
