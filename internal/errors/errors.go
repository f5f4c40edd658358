package errors

import (
	"fmt"
	"net/http"
)

// APIError is the JSON body of every failed request.
// Cause is only surfaced for 500-class errors.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   string    `json:"error,omitempty"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	if e.Cause != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus returns the explicit status or the one mapped from Code.
func (e *APIError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Code.StatusCode()
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found.", resource))
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message)
}

// Conflict creates a CONFLICT error
func Conflict(resource string) *APIError {
	return newError(ErrConflict, fmt.Sprintf("%s already exists.", resource))
}

// ValidationError reports a missing or malformed request field
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newError(ErrRateLimited, message)
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(message string) *APIError {
	return newError(ErrServiceUnavail, message)
}

// InternalError creates an INTERNAL_ERROR carrying the underlying cause
func InternalError(message string, cause error) *APIError {
	return newError(ErrInternalError, message).WithCause(cause)
}

// DatabaseError creates a DATABASE_ERROR carrying the underlying cause
func DatabaseError(message string, cause error) *APIError {
	return newError(ErrDatabase, message).WithCause(cause)
}

// StorageError creates a STORAGE_ERROR carrying the underlying cause
func StorageError(message string, cause error) *APIError {
	return newError(ErrStorage, message).WithCause(cause)
}

// WithCause attaches err's text. Ignored below 500.
func (e *APIError) WithCause(err error) *APIError {
	if err != nil && e.HTTPStatus() >= http.StatusInternalServerError {
		e.Cause = err.Error()
	}
	return e
}
