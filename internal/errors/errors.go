package errors

import (
	"fmt"
	"net/http"
)

// APIError is an error that knows how it should be rendered to API clients
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, status int, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

// Unauthorized is returned when no site can be resolved for a dashboard call
func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, http.StatusUnauthorized, message)
}

func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, http.StatusBadRequest, message)
}

// BadRequestField rejects one named request field
func BadRequestField(field, message string) *APIError {
	e := BadRequest(message)
	e.Field = field
	return e
}

func InternalError(message string) *APIError {
	return newError(ErrInternalError, http.StatusInternalServerError, message)
}

// Upstream wraps a failed vendor call. The dashboard shows the vendor's
// message, so it becomes the error message and the service goes to Details.
// Status stays 500 to match what the dashboard expects.
func Upstream(service string, err error) *APIError {
	if err == nil {
		return newError(ErrUpstream, http.StatusInternalServerError, service+" request failed")
	}
	e := newError(ErrUpstream, http.StatusInternalServerError, err.Error())
	e.Details = service
	return e
}

// RateLimited rejects a caller that exceeded its request window
func RateLimited(retryAfterSeconds int) *APIError {
	e := newError(ErrRateLimited, http.StatusTooManyRequests, "rate limit exceeded")
	e.Details = fmt.Sprintf("retry after %ds", retryAfterSeconds)
	return e
}
