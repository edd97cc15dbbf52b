// Package httpclient is the single point of contact between the client
// core and the marketplace backend.
package httpclient

import (
	"time"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:3002/api"

// DefaultTimeout bounds every request unless overridden per call
const DefaultTimeout = 30 * time.Second

// Config defines HTTP client configuration
type Config struct {
	// BaseURL is prepended to every endpoint
	BaseURL string

	// Timeout is the default per-request deadline
	Timeout time.Duration

	// Language seeds the Accept-Language header; empty sends none
	Language string

	// Transport settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Connection settings
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	KeepAlive           time.Duration

	// TLS configuration
	InsecureSkipVerify bool

	// CacheSize bounds the GET response cache; 0 disables it
	CacheSize int
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Timeout:             DefaultTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		KeepAlive:           30 * time.Second,
		InsecureSkipVerify:  false,
		CacheSize:           256,
	}
}
