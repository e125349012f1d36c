package controllers

import (
	"devflow/apperror"
	"devflow/models"
	"errors"
	"fmt"
	"net/http"
)

// generic custom error types
var (
	ErrInvalidRequest = errors.New("invalid json")
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// HandleError encodes the std ErrorResponse
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	if err == nil {
		apiError.Code = 0
		apiError.Message = ""

		return 0, apiError
	}

	fmt.Println(err)
	switch err {
	// system
	case apperror.ErrNotFound:
		apiError.Code = NotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	case apperror.ErrUnauthenticated:
		apiError.Code = NotAuthenticated
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnauthorized
	case apperror.ErrMultipleRecords:
		apiError.Code = MultipleRecords
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	case apperror.ErrDenied:
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// user
	case models.ErrUserNameNotAvailable:
		apiError.Code = UserNameTaken
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrEMailAddressTaken:
		apiError.Code = EMailAddressTaken
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidUser:
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidPassword:
		apiError.Code = InvalidPassword
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// question/answer
	case models.ErrTitleMissing:
		apiError.Code = TitleMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrContentMissing:
		apiError.Code = ContentMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// tags
	case models.ErrTagCount:
		apiError.Code = TagCountInvalid
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrTagNameMissing:
		apiError.Code = TagNameMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrTagNameTooLong:
		apiError.Code = TagNameTooLong
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// votes
	case models.ErrInvalidDirection:
		apiError.Code = InvalidVote
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidContentKind:
		apiError.Code = InvalidVote
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInconsistentVoteState:
		apiError.Code = InvalidVote
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	default:
		apiError.Code = SystemError
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	}
	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	// generic system
	NotFound
	NotAuthenticated
	MultipleRecords
	ActionDenied
	// user
	UserNameTaken
	EMailAddressTaken
	InvalidPassword
	// question/answer
	TitleMissing
	ContentMissing
	// tags
	TagCountInvalid
	TagNameMissing
	TagNameTooLong
	// votes
	InvalidVote
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid user name or password"
	case NotFound:
		msg = "item does not exist"
	case NotAuthenticated:
		msg = "requires authorization"
	case MultipleRecords:
		msg = "multiple records found"
	case ActionDenied:
		msg = "update/delete action not allowed"
	// user
	case UserNameTaken:
		msg = "user name not available"
	case EMailAddressTaken:
		msg = "e-mail address already registered"
	case InvalidPassword:
		msg = "password does not meet the requirements"
	// question/answer
	case TitleMissing:
		msg = "title is required"
	case ContentMissing:
		msg = "content is required"
	// tags
	case TagCountInvalid:
		msg = "between 1 and 3 tags are required"
	case TagNameMissing:
		msg = "tag name is required"
	case TagNameTooLong:
		msg = "tag name is too long"
	// votes
	case InvalidVote:
		msg = "vote could not be applied"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
