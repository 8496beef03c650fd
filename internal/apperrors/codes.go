// In file: internal/apperrors/codes.go

// Package apperrors defines the numeric error taxonomy shared by the
// recognition pipeline and the HTTP surface.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a numeric application error code.
type Code int

const (
	// CodeRecognition marks a failure inside the strategy chain.
	CodeRecognition Code = 1001
	// CodeModelCall marks a failed call to the language model.
	CodeModelCall Code = 1002
	// CodeActionGeneration marks a failure while mapping an intent to an action.
	CodeActionGeneration Code = 1003
	// CodeResultGeneration marks a failure inside a result handler.
	CodeResultGeneration Code = 1004
	// CodeIntentParsing marks an unparseable intent payload.
	CodeIntentParsing Code = 1005

	CodeValidation  Code = 4000
	CodeNotFound    Code = 4040
	CodeRateLimited Code = 4290
	CodeInternal    Code = 5000
)

// AppError is a structured error carrying a Code.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the code to the status the API answers with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error without a cause.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: cause}
}

// Validation creates a request validation error.
func Validation(msg string) *AppError {
	return New(CodeValidation, msg)
}

// NotFound creates a not-found error.
func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg)
}

// RateLimited creates a rate limit error.
func RateLimited(msg string) *AppError {
	return New(CodeRateLimited, msg)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return Wrap(cause, CodeInternal, "internal server error")
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code Code) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf extracts the outermost code from err, or def if there is none.
func CodeOf(err error, def Code) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return def
}

// HTTPStatusOf maps any error to an HTTP status.
func HTTPStatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
