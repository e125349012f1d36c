package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// user
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrUserNameNotAvailable = errors.New("user name is not available")
	ErrEMailAddressTaken    = errors.New("email-address is already used")
	ErrInvalidUser          = errors.New("invalid user name or password")
	ErrInvalidPassword      = errors.New("password does not meet rules")
)

// question & answer
var (
	ErrTitleMissing   = errors.New("question title is required")
	ErrContentMissing = errors.New("content is required")
	ErrTagCount       = errors.New("a question takes one to three tags")
	ErrTagNameMissing = errors.New("tag name is required")
	ErrTagNameTooLong = errors.New("tag name is too long")
)

// vote
var (
	ErrInvalidDirection      = errors.New("vote direction must be upvote or downvote")
	ErrInvalidContentKind    = errors.New("votes apply to questions and answers only")
	ErrInconsistentVoteState = errors.New("a voter cannot hold both vote directions")
)

// interaction
var (
	ErrUnknownAction = errors.New("unknown interaction action")
)

// pagination (a configuration error, not client input)
var (
	ErrInvalidPageSize = errors.New("page size must be positive")
)
