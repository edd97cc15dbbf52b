// Package api is the typed facade over the route dispatcher. Every method
// validates its payload, dispatches the registry route (so the route's
// auth and rate-limit policy applies) and decodes the typed result.
package api

import (
	"context"
	"fmt"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/validation"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// Dispatcher resolves and executes a registry route
type Dispatcher interface {
	Dispatch(ctx context.Context, category routes.Category, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error)
}

// TokenStore receives the tokens issued by the auth endpoints
type TokenStore interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// API groups the typed services
type API struct {
	Auth     *AuthService
	Teachers *TeacherService
	Students *StudentService
	Bookings *BookingService
	Schedule *ScheduleService
	Reviews  *ReviewService
	Contact  *ContactService
	Payments *PaymentService

	dispatcher Dispatcher
	tokens     TokenStore
	validator  *validation.Validator
	logger     *zap.Logger
	readCache  httpclient.CacheMode
}

// CachePurger is implemented by dispatchers whose client caches responses
type CachePurger interface {
	PurgeCache()
}

// Option configures an API
type Option func(*API)

// WithTokenStore persists tokens returned by login, register and refresh
func WithTokenStore(store TokenStore) Option {
	return func(a *API) {
		a.tokens = store
	}
}

// WithValidator replaces the shared validator
func WithValidator(v *validation.Validator) Option {
	return func(a *API) {
		if v != nil {
			a.validator = v
		}
	}
}

// WithReadCache sets the cache mode of the teacher browsing reads (List,
// Search, Get, Reviews and Reviews.List). Writes that change what those
// reads return purge the cache when the dispatcher is a CachePurger.
func WithReadCache(mode httpclient.CacheMode) Option {
	return func(a *API) {
		a.readCache = mode
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates the facade over dispatcher
func New(dispatcher Dispatcher, opts ...Option) *API {
	a := &API{
		dispatcher: dispatcher,
		validator:  validation.Default(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Auth = &AuthService{api: a}
	a.Teachers = &TeacherService{api: a}
	a.Students = &StudentService{api: a}
	a.Bookings = &BookingService{api: a}
	a.Schedule = &ScheduleService{api: a}
	a.Reviews = &ReviewService{api: a}
	a.Contact = &ContactService{api: a}
	a.Payments = &PaymentService{api: a}
	return a
}

// call is one typed dispatch
type call struct {
	category routes.Category
	action   string
	body     any
	params   map[string]any
	query    map[string]any
	validate bool

	// cached reads use the WithReadCache mode
	cached      bool
	// invalidates purges cached reads after success
	invalidates bool
}

func (a *API) send(ctx context.Context, c call) (*httpclient.Response, error) {
	if c.validate {
		if err := a.validator.Validate(c.body); err != nil {
			return nil, err
		}
	}
	for name, v := range c.params {
		if s, ok := v.(string); ok && s == "" {
			return nil, fmt.Errorf("%w: %s is empty", apierrors.ErrUnresolvedParam, name)
		}
	}

	var opts *routes.RequestOptions
	if c.params != nil || c.query != nil || (c.cached && a.readCache != "") {
		opts = &routes.RequestOptions{Params: c.params, Query: c.query}
		if c.cached {
			opts.Cache = a.readCache
		}
	}
	resp, err := a.dispatcher.Dispatch(ctx, c.category, c.action, c.body, opts)
	if err == nil && c.invalidates && a.readCache != "" {
		if p, ok := a.dispatcher.(CachePurger); ok {
			p.PurgeCache()
		}
	}
	return resp, err
}

// do dispatches c and decodes the response into T
func do[T any](ctx context.Context, a *API, c call) (T, error) {
	var out T
	resp, err := a.send(ctx, c)
	if err != nil {
		return out, err
	}
	out, err = httpclient.Decode[T](resp)
	if err != nil {
		return out, fmt.Errorf("%s.%s: failed to decode response: %w", c.category, c.action, err)
	}
	return out, nil
}

func id(name, value string) map[string]any {
	return map[string]any{name: value}
}
