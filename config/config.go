// Package config holds the client configuration and loads it through
// Bofry/config (YAML, .env, environment variables, command arguments).
package config

import (
	"fmt"
	"time"

	"github.com/yshengliao/antoree/middleware"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/storage"
	"github.com/yshengliao/antoree/pkg/validation"
)

// Config represents the application configuration structure
type Config struct {
	API      APIConfig      `yaml:"api" env:"API"`
	Storage  StorageConfig  `yaml:"storage" env:"STORAGE"`
	Throttle ThrottleConfig `yaml:"throttle" env:"THROTTLE"`
	Logger   LoggerConfig   `yaml:"logger" env:"LOGGER"`
	Metrics  MetricsConfig  `yaml:"metrics" env:"METRICS"`
}

// APIConfig holds the backend connection settings
type APIConfig struct {
	// BaseURL wins over Origin when set
	BaseURL string `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	// Origin is the site origin; the API lives under Origin + "/api"
	Origin   string        `yaml:"origin" env:"ORIGIN" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" default:"30s" validate:"gte=0"`
	Language string        `yaml:"language" env:"LANGUAGE" validate:"omitempty,oneof=vi en"`
	// RoutesFile overrides or extends the built-in route table
	RoutesFile string `yaml:"routes_file" env:"ROUTES_FILE"`
	CacheSize  int    `yaml:"cache_size" env:"CACHE_SIZE" default:"256" validate:"gte=0"`
	// ReadCache is the cache mode of teacher and review browsing calls
	ReadCache string `yaml:"read_cache" env:"READ_CACHE" validate:"omitempty,oneof=no-store force-cache reload"`
}

// StorageConfig selects where the token, language and rate-limit windows live
type StorageConfig struct {
	Driver        string        `yaml:"driver" env:"DRIVER" default:"memory" validate:"oneof=memory file redis"`
	Path          string        `yaml:"path" env:"FILE" validate:"required_if=Driver file"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Driver redis"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" validate:"gte=0"`
	KeyPrefix     string        `yaml:"key_prefix" env:"KEY_PREFIX" default:"antoree:"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
}

// ThrottleConfig configures the process-wide token bucket
type ThrottleConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	Rate    float64 `yaml:"rate" env:"RATE" default:"10" validate:"gte=0"`
	Burst   int     `yaml:"burst" env:"BURST" default:"20" validate:"gte=0"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info" validate:"oneof=debug info warn error dpanic panic fatal"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json" validate:"oneof=json console"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// MetricsConfig toggles the Prometheus collectors
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE" default:"antoree"`
}

// Loader interface for configuration loading
type Loader interface {
	Load(cfg *Config) error
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout:   httpclient.DefaultTimeout,
			CacheSize: 256,
		},
		Storage: StorageConfig{
			Driver:    "memory",
			KeyPrefix: "antoree:",
		},
		Throttle: ThrottleConfig{
			Rate:  10,
			Burst: 20,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Namespace: "antoree",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validation.Default().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ClientConfig derives the HTTP client settings
func (c *Config) ClientConfig() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = c.BaseURL()
	if c.API.Timeout > 0 {
		cfg.Timeout = c.API.Timeout
	}
	cfg.Language = c.API.Language
	cfg.CacheSize = c.API.CacheSize
	return cfg
}

// BaseURL resolves the backend URL, see ResolveBaseURL
func (c *Config) BaseURL() string {
	if c.API.BaseURL != "" {
		return ResolveBaseURL(c.API.BaseURL, "")
	}
	return ResolveBaseURL("", c.API.Origin)
}

// StorageOptions converts the storage section for storage.Open
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:        c.Storage.Driver,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		KeyPrefix:     c.Storage.KeyPrefix,
		TTL:           c.Storage.TTL,
	}
}

// BucketStoreConfig converts the throttle section; ok is false when
// throttling is disabled.
func (c *Config) BucketStoreConfig() (cfg middleware.BucketStoreConfig, ok bool) {
	if !c.Throttle.Enabled {
		return cfg, false
	}
	cfg = middleware.DefaultBucketStoreConfig()
	cfg.Rate = c.Throttle.Rate
	cfg.Burst = c.Throttle.Burst
	return cfg, true
}
