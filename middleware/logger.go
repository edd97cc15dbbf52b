package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// LoggingConfig contains configuration for the logging middleware
type LoggingConfig struct {
	// Logger is the zap logger to use
	Logger *zap.Logger
	// LogData logs the request body
	LogData bool
	// RedactKeys are body fields replaced by "[REDACTED]" at any depth
	RedactKeys []string
}

// DefaultLoggingConfig returns the default configuration
func DefaultLoggingConfig(logger *zap.Logger) LoggingConfig {
	return LoggingConfig{
		Logger:     logger,
		LogData:    true,
		RedactKeys: []string{"password", "confirmPassword", "newPassword", "token", "cardNumber", "cvv"},
	}
}

// Logging writes the route, body and options of each dispatch. It never
// fails.
func Logging(logger *zap.Logger) Func {
	return LoggingWithConfig(DefaultLoggingConfig(logger))
}

// LoggingWithConfig returns a logging middleware with custom configuration
func LoggingWithConfig(config LoggingConfig) Func {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(_ context.Context, mc *Context) (*Context, error) {
		fields := []zap.Field{
			zap.String("method", string(mc.Route.Method)),
			zap.String("path", mc.Route.Path),
		}
		if config.LogData && mc.Data != nil {
			fields = append(fields, zap.Any("data", redact(mc.Data, config.RedactKeys)))
		}
		if mc.Options != nil {
			if len(mc.Options.Params) > 0 {
				fields = append(fields, zap.Any("params", mc.Options.Params))
			}
			if len(mc.Options.Query) > 0 {
				fields = append(fields, zap.Any("query", mc.Options.Query))
			}
		}

		config.Logger.Info("api route", fields...)
		return mc, nil
	}
}

func redact(data any, keys []string) any {
	if len(keys) == 0 {
		return data
	}
	return redactValue(data, keys)
}

func redactValue(v any, keys []string) any {
	switch val := v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return v
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, field := range val {
			if isRedacted(k, keys) {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = redactValue(field, keys)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item, keys)
		}
		return out
	default:
		// Typed payloads are redacted through their JSON form
		raw, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var generic any
		if json.Unmarshal(raw, &generic) != nil {
			return v
		}
		switch generic.(type) {
		case map[string]any, []any:
			return redactValue(generic, keys)
		}
		return v
	}
}

func isRedacted(field string, keys []string) bool {
	for _, key := range keys {
		if strings.EqualFold(field, key) {
			return true
		}
	}
	return false
}
