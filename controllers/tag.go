package controllers

import (
	"devflow/environment"
	"devflow/helpers"
	"devflow/models"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListTags returns a page of tags
// format => http://localhost:3000/tags?search=go&filter=popular&page=2
func ListTags(c *gin.Context) {

	var search models.TagSearch
	search.SearchTerm = c.Query("search")
	search.Filter = c.Query("filter")
	search.Page = parsePage(c)

	items, hasNext, err := environment.Env.TagModel.SearchTags(&search)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Page{Items: items, HasNext: hasNext})
}

// GetTag returns one tag
func GetTag(c *gin.Context) {

	tag, err := environment.Env.TagModel.GetTag(helpers.ObjectID(c.Param("id")))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// TopInteractedTags returns a user's strongest tag affinities
// format => http://localhost:3000/users/:id/tags?limit=3
func TopInteractedTags(c *gin.Context) {

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = 3 // profile card default
	}

	tags, err := environment.Env.TagModel.TopInteractedTags(helpers.ObjectID(c.Param("id")), limit)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tags)
}
