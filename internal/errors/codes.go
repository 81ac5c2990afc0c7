package errors

// ErrorCode is the machine-readable `code` of an error response
type ErrorCode string

const (
	ErrUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrBadRequest    ErrorCode = "BAD_REQUEST"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
	// ErrUpstream marks failures of Wix or another vendor API
	ErrUpstream ErrorCode = "UPSTREAM_ERROR"
)
