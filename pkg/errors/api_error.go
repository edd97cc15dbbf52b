package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Policy errors raised by the dispatcher before any network call is made.
var (
	ErrAuthRequired      = errors.New("Authentication required")
	ErrRateLimitExceeded = errors.New("Rate limit exceeded")
	ErrUnknownRoute      = errors.New("unknown route")
	ErrUnknownMiddleware = errors.New("unknown middleware")
	ErrUnresolvedParam   = errors.New("unresolved path parameter")
)

// Status codes carried by APIError for failures that never produced an
// HTTP response.
const (
	StatusNetworkError = 0
	StatusTimeout      = http.StatusRequestTimeout
)

// TimeoutMessage is the message of the APIError returned when the client
// deadline elapses.
const TimeoutMessage = "Request timeout"

// APIError is the single failure shape returned by the HTTP client.
type APIError struct {
	Message    string
	StatusCode int
	// Details holds the parsed response body for non-2xx responses
	Details any
	cause   error
}

// NewAPIError creates an APIError with the given message and status
func NewAPIError(message string, statusCode int) *APIError {
	return &APIError{Message: message, StatusCode: statusCode}
}

// NewAPIErrorWithDetails creates an APIError carrying the response body
func NewAPIErrorWithDetails(message string, statusCode int, details any) *APIError {
	return &APIError{Message: message, StatusCode: statusCode, Details: details}
}

// NewTimeoutError creates the APIError for an elapsed client deadline
func NewTimeoutError(cause error) *APIError {
	return &APIError{Message: TimeoutMessage, StatusCode: StatusTimeout, cause: cause}
}

// NewNetworkError wraps a transport-level failure
func NewNetworkError(cause error) *APIError {
	return &APIError{Message: cause.Error(), StatusCode: StatusNetworkError, cause: cause}
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the transport error behind a network or timeout failure
func (e *APIError) Unwrap() error {
	return e.cause
}

// Code returns the error code matching the status
func (e *APIError) Code() ErrorCode {
	return CodeForStatus(e.StatusCode)
}

// String renders the error with its status for logs
func (e *APIError) String() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// AsAPIError extracts an APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or -1 when err is not
// an APIError.
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return -1
}

// IsTimeout reports whether err is a client timeout
func IsTimeout(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == StatusTimeout && apiErr.Message == TimeoutMessage
}

// IsNetwork reports whether err is a transport-level failure
func IsNetwork(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == StatusNetworkError
}

// IsUnauthorized reports whether the backend rejected the credentials or
// the dispatcher refused to send an unauthenticated request.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrAuthRequired) {
		return true
	}
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsForbidden reports whether the backend answered 403
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsPolicy reports whether err was raised by the dispatcher before any
// network call was made.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrRateLimitExceeded) ||
		errors.Is(err, ErrUnknownRoute) ||
		errors.Is(err, ErrUnknownMiddleware) ||
		errors.Is(err, ErrUnresolvedParam)
}
