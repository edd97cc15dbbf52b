// Package errors defines the failure shapes returned by the API client core
package errors

import "net/http"

// ErrorCode represents a standardized client error code
type ErrorCode int

// Error code categories:
// 1xxx - Validation errors
// 2xxx - Authentication/Authorization errors
// 3xxx - System and transport errors
// 4xxx - Business logic errors reported by the backend
const (
	// Validation errors (1xxx)
	CodeValidationFailed     ErrorCode = 1000
	CodeInvalidInput         ErrorCode = 1001
	CodeMissingRequiredField ErrorCode = 1002
	CodeInvalidFormat        ErrorCode = 1003
	CodeInvalidJSON          ErrorCode = 1008
	CodeInvalidQueryParam    ErrorCode = 1009
	CodeUnresolvedParam      ErrorCode = 1010

	// Authentication/Authorization errors (2xxx)
	CodeUnauthorized   ErrorCode = 2000
	CodeTokenExpired   ErrorCode = 2002
	CodeTokenMissing   ErrorCode = 2004
	CodeForbidden      ErrorCode = 2005
	CodeSessionExpired ErrorCode = 2009

	// System errors (3xxx)
	CodeInternalServerError ErrorCode = 3000
	CodeServiceUnavailable  ErrorCode = 3002
	CodeTimeout             ErrorCode = 3003
	CodeRateLimitExceeded   ErrorCode = 3004
	CodeNotImplemented      ErrorCode = 3006
	CodeBadGateway          ErrorCode = 3007
	CodeConfigurationError  ErrorCode = 3009
	CodeNetworkError        ErrorCode = 3010
	CodeUnknownError        ErrorCode = 3011
	CodeMarshalError        ErrorCode = 3012
	CodeUnmarshalError      ErrorCode = 3013
	CodeUnknownRoute        ErrorCode = 3016
	CodeUnknownMiddleware   ErrorCode = 3017

	// Business logic errors (4xxx)
	CodeBusinessLogicError    ErrorCode = 4000
	CodeResourceNotFound      ErrorCode = 4001
	CodeResourceAlreadyExists ErrorCode = 4002
	CodePreconditionFailed    ErrorCode = 4004
	CodeConflict              ErrorCode = 4005
	CodePaymentRequired       ErrorCode = 4006
)

// errorMessages maps error codes to default messages
var errorMessages = map[ErrorCode]string{
	CodeValidationFailed:     "Validation failed",
	CodeInvalidInput:         "Invalid input provided",
	CodeMissingRequiredField: "Required field is missing",
	CodeInvalidFormat:        "Invalid format",
	CodeInvalidJSON:          "Invalid JSON format",
	CodeInvalidQueryParam:    "Invalid query parameter",
	CodeUnresolvedParam:      "Unresolved path parameter",

	CodeUnauthorized:   "Authentication required",
	CodeTokenExpired:   "Token has expired",
	CodeTokenMissing:   "Token is missing",
	CodeForbidden:      "Access forbidden",
	CodeSessionExpired: "Session has expired",

	CodeInternalServerError: "Internal server error",
	CodeServiceUnavailable:  "Service temporarily unavailable",
	CodeTimeout:             "Request timeout",
	CodeRateLimitExceeded:   "Rate limit exceeded",
	CodeNotImplemented:      "Feature not implemented",
	CodeBadGateway:          "Bad gateway",
	CodeConfigurationError:  "Configuration error",
	CodeNetworkError:        "Network error",
	CodeUnknownError:        "Unknown error",
	CodeMarshalError:        "Data marshaling error",
	CodeUnmarshalError:      "Data unmarshaling error",
	CodeUnknownRoute:        "Unknown route",
	CodeUnknownMiddleware:   "Unknown middleware",

	CodeBusinessLogicError:    "Business logic error",
	CodeResourceNotFound:      "Resource not found",
	CodeResourceAlreadyExists: "Resource already exists",
	CodePreconditionFailed:    "Precondition failed",
	CodeConflict:              "Resource conflict",
	CodePaymentRequired:       "Payment required",
}

// Message returns the default message for an error code
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return "Unknown error"
}

// Int returns the error code as an integer
func (e ErrorCode) Int() int {
	return int(e)
}

// String returns the error code as a string
func (e ErrorCode) String() string {
	return e.Message()
}

// CodeForStatus maps an HTTP status reported by the backend (or the
// synthetic 0 and 408 statuses produced by the client) to an error code.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case 0:
		return CodeNetworkError
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusPaymentRequired:
		return CodePaymentRequired
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeResourceNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout
	case http.StatusConflict:
		return CodeConflict
	case http.StatusPreconditionFailed:
		return CodePreconditionFailed
	case http.StatusUnprocessableEntity:
		return CodeValidationFailed
	case http.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusBadGateway:
		return CodeBadGateway
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	}

	switch {
	case status >= 500:
		return CodeInternalServerError
	case status >= 400:
		return CodeBusinessLogicError
	}
	return CodeUnknownError
}
