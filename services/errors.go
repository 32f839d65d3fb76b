package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error codes for the failure taxonomy surfaced to the HTTP layer.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeMissingField    = "missing_field"
	CodeValidation      = "validation"
	CodeNotFound        = "not_found"
	CodeInternal        = "internal"
)

// Error is a service failure with a client-safe message. The wrapped cause,
// if any, is for logging and never reaches the caller.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error code to its HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeMissingField, CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func MissingField(message string) *Error {
	return &Error{Code: CodeMissingField, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// AsError unwraps err into a service Error, if it is one.
func AsError(err error) (*Error, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
