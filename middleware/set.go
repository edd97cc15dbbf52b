package middleware

import (
	"github.com/yshengliao/antoree/pkg/storage"
	"go.uber.org/zap"
)

// Deps are the collaborators of the built-in middlewares
type Deps struct {
	Tokens  TokenSource
	Limiter RateLimiter
	Logger  *zap.Logger
	// Buckets enables the "throttle" middleware when set
	Buckets *BucketStore
}

// NewSet binds the built-in middlewares to deps. A nil Tokens never
// provides a token and a nil Limiter gets an in-memory sliding window.
func NewSet(deps Deps) Set {
	if deps.Tokens == nil {
		deps.Tokens = noTokens{}
	}
	if deps.Limiter == nil {
		deps.Limiter = NewSlidingWindow(storage.NewMemoryStore(), WithWindowLogger(deps.Logger))
	}

	set := Set{
		NameAuth:      Auth(deps.Tokens),
		NameRateLimit: RateLimit(deps.Limiter),
		NameLogging:   Logging(deps.Logger),
		NameRequestID: RequestID(),
	}
	if deps.Buckets != nil {
		set[NameThrottle] = Throttle(deps.Buckets, nil)
	}
	return set
}

type noTokens struct{}

func (noTokens) AuthToken() (string, bool) { return "", false }
