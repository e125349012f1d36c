package apperror

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoData          = Error("no records found")
	ErrNotFound        = Error("referenced record does not exist")
	ErrMultipleRecords = Error("mulitple records found")
	ErrUnauthenticated = Error("operation requires a signed-in user")
	ErrUnavailable     = Error("store not available")
	ErrDenied          = Error("not allowed") // eg. upd/del not allowed
)
