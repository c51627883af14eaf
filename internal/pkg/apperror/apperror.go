// Package apperror defines the error type shared across feature packages.
// An AppError carries the HTTP status a handler should answer with, so
// services can express outcomes without importing gin.
package apperror

// AppError couples a user-facing message with an HTTP status code and an
// optional wrapped cause.
type AppError struct {
	Code    int    // HTTP status code
	Message string // safe to expose to the caller
	Err     error  // underlying cause, never serialized
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a status code and message to an underlying error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
