// Package middleware provides the dispatch-time middleware chain: ordered
// steps that inspect or mutate a request context before the HTTP call, or
// abort it.
package middleware

import (
	"context"
	"fmt"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/routes"
)

// Names of the built-in middlewares
const (
	NameAuth      = "auth"
	NameRateLimit = "rateLimit"
	NameLogging   = "logging"
	NameRequestID = "requestId"
	NameThrottle  = "throttle"
)

// DefaultChain is run for routes that do not list their own middleware
func DefaultChain() []string {
	return []string{NameAuth, NameRateLimit, NameLogging}
}

// Context is the mutable request state threaded through the chain. It is
// created for one dispatch and dropped once the HTTP call returns.
type Context struct {
	Route   routes.RouteConfig
	Data    any
	Options *routes.RequestOptions
	Headers map[string]string
}

// NewContext creates a context with headers seeded from opts.Headers
func NewContext(route routes.RouteConfig, data any, opts *routes.RequestOptions) *Context {
	if opts == nil {
		opts = &routes.RequestOptions{}
	}
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &Context{
		Route:   route,
		Data:    data,
		Options: opts,
		Headers: headers,
	}
}

// Func is a single middleware. It returns the context to hand to the next
// step, or an error that aborts the dispatch.
type Func func(ctx context.Context, mc *Context) (*Context, error)

// Set maps middleware names to implementations. It is passed explicitly
// to the dispatcher; there is no global registration.
type Set map[string]Func

// With returns a copy of s with name bound to fn
func (s Set) With(name string, fn Func) Set {
	out := make(Set, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[name] = fn
	return out
}

// Names returns the chain for a route: its own list when set (an empty,
// non-nil list runs nothing), DefaultChain otherwise.
func Names(route routes.RouteConfig) []string {
	if route.Middleware != nil {
		return route.Middleware
	}
	return DefaultChain()
}

// Resolve looks up every name in order
func (s Set) Resolve(names []string) ([]Func, error) {
	chain := make([]Func, 0, len(names))
	for _, name := range names {
		fn, ok := s[name]
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrUnknownMiddleware, name)
		}
		chain = append(chain, fn)
	}
	return chain, nil
}

// Run executes chain in order. A step returning a nil context keeps the
// one it was given.
func Run(ctx context.Context, mc *Context, chain []Func) (*Context, error) {
	for _, fn := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := fn(ctx, mc)
		if err != nil {
			return nil, err
		}
		if next != nil {
			mc = next
		}
	}
	return mc, nil
}
