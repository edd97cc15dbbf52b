// Package storage provides the key/value store the client keeps its
// persisted state in: the auth token, the language and the rate-limit
// windows.
package storage

import (
	"context"
	"errors"
)

// Well-known keys
const (
	KeyAuthToken       = "authToken"
	KeyLanguage        = "language"
	KeyLegacyLanguage  = "antoree-language"
	RateLimitKeyPrefix = "rate_limit_"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RateLimitKey returns the key holding the window for a route path
func RateLimitKey(path string) string {
	return RateLimitKeyPrefix + path
}

// GetOr returns the stored value or def when the key is absent
func GetOr(ctx context.Context, s Store, key, def string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}
