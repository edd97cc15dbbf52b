package middleware

import (
	"context"

	"github.com/google/uuid"
)

// HeaderXRequestID carries the request ID to the backend
const HeaderXRequestID = "X-Request-ID"

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Generator defines a function to generate an ID.
	// Optional. Defaults to UUID v4.
	Generator func() string

	// TargetHeader defines the header name to set.
	// Optional. Defaults to X-Request-ID
	TargetHeader string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Generator:    generateRequestID,
	TargetHeader: HeaderXRequestID,
}

// generateRequestID generates a new request ID using UUID v4
func generateRequestID() string {
	return uuid.New().String()
}

// RequestID tags each dispatch with a unique ID unless the caller already
// supplied one.
func RequestID() Func {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with config.
func RequestIDWithConfig(config RequestIDConfig) Func {
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}
	if config.TargetHeader == "" {
		config.TargetHeader = DefaultRequestIDConfig.TargetHeader
	}

	return func(_ context.Context, mc *Context) (*Context, error) {
		if !hasHeader(mc.Headers, config.TargetHeader) {
			mc.Headers[config.TargetHeader] = config.Generator()
		}
		return mc, nil
	}
}
