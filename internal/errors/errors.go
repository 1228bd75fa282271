// Package errors defines the typed service errors surfaced over HTTP.
package errors

import (
	"fmt"
	"net/http"
)

// ServiceError carries an error code, a human-readable message and the HTTP
// status it maps to. Details hold optional structured context.
type ServiceError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a structured detail and returns the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// BadRequest indicates a malformed or invalid request.
func BadRequest(message string) *ServiceError {
	return &ServiceError{Code: "bad_request", Message: message, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized indicates missing or failed authentication.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: "unauthorized", Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden indicates the caller is authenticated but not allowed.
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: "forbidden", Message: message, HTTPStatus: http.StatusForbidden}
}

// NotFound indicates the requested resource does not exist.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       "not_found",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidToken indicates a token that failed parsing or validation.
func InvalidToken(cause error) *ServiceError {
	return &ServiceError{
		Code:       "invalid_token",
		Message:    "invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
		cause:      cause,
	}
}

// RateLimitExceeded indicates the caller exhausted its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	e := &ServiceError{
		Code:       "rate_limit_exceeded",
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
	return e.WithDetails("limit", limit).WithDetails("window", window)
}
