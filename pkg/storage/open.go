package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Drivers accepted by Open
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Options selects and configures a store implementation
type Options struct {
	Driver string
	// Path of the JSON file for the file driver
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	TTL           time.Duration
}

// Open builds the store selected by opts.Driver. An empty driver means
// memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("storage: file driver requires a path")
		}
		return NewFileStore(opts.Path)
	case DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		s := NewRedisStore(rdb, WithKeyPrefix(opts.KeyPrefix), WithTTL(opts.TTL))
		if err := s.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("storage: redis unreachable at %s: %w", opts.RedisAddr, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
