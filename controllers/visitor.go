package controllers

import (
	"devflow/analytics"
	"devflow/authentication"
	"devflow/environment"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// parseStartDT reads the optional startDT query param
// (default: 7 days back, starting at 00:00:00)
func parseStartDT(c *gin.Context) (time.Time, error) {

	startStr := c.Query("startDT")
	if startStr == "" {
		startDT := time.Now().AddDate(0, 0, -7)
		return time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, startDT.UTC().Location()), nil
	}

	return time.Parse("2006-01-02", startStr)
}

// GetVisits returns the live visit count of a profile
// format => http://localhost:3000/stats/visits?domain=question&id=...&startDT=2026-08-01
func GetVisits(c *gin.Context) {

	var apiError ErrorResponse

	id := c.Query("id")
	domain := c.Query("domain")
	if id == "" || (domain != analytics.DomainQuestion && domain != analytics.DomainUser) {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := parseStartDT(c)
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visits, err := environment.Env.Tracker.GetVisits(domain, id, startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Visits int64 `json:"visits"`
	}{visits}

	c.JSON(http.StatusOK, res)
}

// ListVisitors returns the last visitors of a profile (signed-in only)
func ListVisitors(c *gin.Context) {

	var apiError ErrorResponse

	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	id := c.Query("id")
	domain := c.Query("domain")
	if id == "" || (domain != analytics.DomainQuestion && domain != analytics.DomainUser) {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := parseStartDT(c)
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visitors, err := environment.Env.Tracker.ListVisitors(domain, id, startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, visitors)
}
