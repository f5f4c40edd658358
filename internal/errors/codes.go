package errors

import "net/http"

// ErrorCode classifies an API failure
type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrDatabase       ErrorCode = "DATABASE_ERROR"
	ErrStorage        ErrorCode = "STORAGE_ERROR"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:       http.StatusNotFound,
	ErrForbidden:      http.StatusForbidden,
	ErrConflict:       http.StatusConflict,
	ErrAlreadyExists:  http.StatusConflict,
	ErrValidation:     http.StatusBadRequest,
	ErrBadRequest:     http.StatusBadRequest,
	ErrRateLimited:    http.StatusTooManyRequests,
	ErrServiceUnavail: http.StatusServiceUnavailable,
	ErrInternalError:  http.StatusInternalServerError,
	ErrDatabase:       http.StatusInternalServerError,
	ErrStorage:        http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
