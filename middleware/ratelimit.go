package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/storage"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether a route may be called now
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit routes.RateLimit) (bool, error)
}

// SlidingWindow keeps the call timestamps (unix milliseconds) of each key
// as a JSON array in a storage.Store. The read-modify-write is serialized
// within one process only; processes sharing a store can race past the
// limit.
type SlidingWindow struct {
	store  storage.Store
	now    func() time.Time
	logger *zap.Logger
	mu     sync.Mutex
}

// SlidingWindowOption configures a SlidingWindow
type SlidingWindowOption func(*SlidingWindow)

// WithClock replaces time.Now
func WithClock(now func() time.Time) SlidingWindowOption {
	return func(w *SlidingWindow) {
		w.now = now
	}
}

// WithWindowLogger sets the logger used for unreadable windows
func WithWindowLogger(logger *zap.Logger) SlidingWindowOption {
	return func(w *SlidingWindow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewSlidingWindow creates a limiter persisted in store
func NewSlidingWindow(store storage.Store, opts ...SlidingWindowOption) *SlidingWindow {
	w := &SlidingWindow{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow prunes timestamps older than the window and records a new one
// unless limit.Requests are already inside it.
func (w *SlidingWindow) Allow(ctx context.Context, key string, limit routes.RateLimit) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UnixMilli()
	stamps, err := w.load(ctx, key)
	if err != nil {
		return false, err
	}

	recent := stamps[:0]
	for _, ts := range stamps {
		if now-ts < limit.WindowMs {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit.Requests {
		return false, nil
	}

	recent = append(recent, now)
	raw, err := json.Marshal(recent)
	if err != nil {
		return false, err
	}
	if err := w.store.Set(ctx, key, string(raw)); err != nil {
		return false, fmt.Errorf("rate limit: failed to persist window: %w", err)
	}
	return true, nil
}

// Reset forgets the window of key
func (w *SlidingWindow) Reset(ctx context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Remove(ctx, key)
}

func (w *SlidingWindow) load(ctx context.Context, key string) ([]int64, error) {
	raw, err := w.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rate limit: failed to read window: %w", err)
	}

	var stamps []int64
	if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
		// An unreadable window starts over
		w.logger.Warn("discarding corrupt rate limit window", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return stamps, nil
}

// RateLimit enforces route.RateLimit through limiter, keyed by the route's
// path template. Routes without a policy pass through.
func RateLimit(limiter RateLimiter) Func {
	return func(ctx context.Context, mc *Context) (*Context, error) {
		if mc.Route.RateLimit == nil {
			return mc, nil
		}

		ok, err := limiter.Allow(ctx, storage.RateLimitKey(mc.Route.Path), *mc.Route.RateLimit)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierrors.ErrRateLimitExceeded
		}
		return mc, nil
	}
}

// limiterEntry holds a token bucket and its last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// BucketStore is a process-wide token bucket per key. It smooths bursts
// across every route regardless of their sliding window policy.
type BucketStore struct {
	rate     rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	cleanup  *time.Ticker
	ttl      time.Duration
	stopped  chan struct{}
	stopOnce sync.Once
}

// BucketStoreConfig holds configuration for BucketStore
type BucketStoreConfig struct {
	// Rate is the number of requests per second
	Rate float64
	// Burst is the maximum burst size
	Burst           int
	CleanupInterval time.Duration
	TTL             time.Duration
}

// DefaultBucketStoreConfig returns default configuration
func DefaultBucketStoreConfig() BucketStoreConfig {
	return BucketStoreConfig{
		Rate:            10,
		Burst:           20,
		CleanupInterval: 1 * time.Minute,
		TTL:             10 * time.Minute,
	}
}

// NewBucketStore creates a bucket store and starts its cleanup routine
func NewBucketStore(config BucketStoreConfig) *BucketStore {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultBucketStoreConfig().CleanupInterval
	}
	if config.TTL <= 0 {
		config.TTL = DefaultBucketStoreConfig().TTL
	}

	store := &BucketStore{
		rate:     rate.Limit(config.Rate),
		burst:    config.Burst,
		limiters: make(map[string]*limiterEntry),
		cleanup:  time.NewTicker(config.CleanupInterval),
		ttl:      config.TTL,
		stopped:  make(chan struct{}),
	}

	go store.cleanupRoutine()

	return store
}

// Allow checks if a request is allowed
func (s *BucketStore) Allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	entry, exists := s.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Size returns the current number of buckets
func (s *BucketStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// cleanupRoutine periodically drops idle buckets
func (s *BucketStore) cleanupRoutine() {
	for {
		select {
		case <-s.cleanup.C:
			s.performCleanup()
		case <-s.stopped:
			return
		}
	}
}

func (s *BucketStore) performCleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > s.ttl {
			delete(s.limiters, key)
		}
	}
}

// Stop stops the cleanup routine
func (s *BucketStore) Stop() {
	s.stopOnce.Do(func() {
		s.cleanup.Stop()
		close(s.stopped)
	})
}

// Throttle rejects a dispatch when the bucket for the route's path is
// empty. Pass an empty keyFn result to share one bucket across routes.
func Throttle(store *BucketStore, keyFn func(*Context) string) Func {
	if keyFn == nil {
		keyFn = func(mc *Context) string { return mc.Route.Path }
	}
	return func(_ context.Context, mc *Context) (*Context, error) {
		if !store.Allow(keyFn(mc)) {
			return nil, apierrors.ErrRateLimitExceeded
		}
		return mc, nil
	}
}
