package apperror

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is a domain error with a caller-facing message. Err is one of the
// kind sentinels above so errors.Is can classify it.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func Invalid(field, message string) *AppError {
	return &AppError{Err: ErrInvalid, Message: message, Field: field}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

// Message returns the caller-facing message of err if it is an AppError.
func Message(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
