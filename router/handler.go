// Package router dispatches registry routes: it runs the route's
// middleware chain, builds the final URL and performs the HTTP call.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yshengliao/antoree/middleware"
	"github.com/yshengliao/antoree/observability/metrics"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// Requester performs the HTTP call of a dispatch
type Requester interface {
	Request(ctx context.Context, endpoint string, cfg httpclient.RequestConfig) (*httpclient.Response, error)
}

// RouteHandler dispatches routes through their middleware chain
type RouteHandler struct {
	client      Requester
	middlewares middleware.Set
	logger      *zap.Logger
	metrics     metrics.Collector

	mu       sync.RWMutex
	registry routes.Registry
}

// Option configures a RouteHandler
type Option func(*RouteHandler)

// WithRegistry replaces the built-in route table
func WithRegistry(registry routes.Registry) Option {
	return func(h *RouteHandler) {
		h.registry = registry
	}
}

// WithMiddleware replaces the middleware set
func WithMiddleware(set middleware.Set) Option {
	return func(h *RouteHandler) {
		h.middlewares = set
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *RouteHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics sets the collector used for middleware rejections
func WithMetrics(collector metrics.Collector) Option {
	return func(h *RouteHandler) {
		h.metrics = metrics.OrNoOp(collector)
	}
}

// New creates a handler over client. Without WithMiddleware the built-in
// set is used, taking its token from client when client exposes one.
func New(client Requester, opts ...Option) *RouteHandler {
	h := &RouteHandler{
		client:  client,
		logger:  zap.NewNop(),
		metrics: metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.registry == nil {
		h.registry = routes.Default()
	}
	if h.middlewares == nil {
		deps := middleware.Deps{Logger: h.logger}
		if tokens, ok := client.(middleware.TokenSource); ok {
			deps.Tokens = tokens
		}
		h.middlewares = middleware.NewSet(deps)
	}
	return h
}

// PurgeCache empties the client's response cache when it has one
func (h *RouteHandler) PurgeCache() {
	if p, ok := h.client.(interface{ PurgeCache() }); ok {
		p.PurgeCache()
	}
}

// Registry returns the active route table
func (h *RouteHandler) Registry() routes.Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry
}

// SetRegistry swaps the route table; dispatches already running keep
// the route they looked up.
func (h *RouteHandler) SetRegistry(registry routes.Registry) {
	h.mu.Lock()
	h.registry = registry
	h.mu.Unlock()
}

// ExecuteRoute runs route's middleware chain and, when it passes, sends
// the request. Chain errors are returned unchanged and no request is made.
func (h *RouteHandler) ExecuteRoute(ctx context.Context, route routes.RouteConfig, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	mc := middleware.NewContext(route, data, opts)

	chain, err := h.middlewares.Resolve(middleware.Names(route))
	if err != nil {
		return nil, fmt.Errorf("route %s %s: %w", route.Method, route.Path, err)
	}

	mc, err = middleware.Run(ctx, mc, chain)
	if err != nil {
		h.metrics.RecordRejection(rejectionReason(err), route.Path)
		h.logger.Debug("dispatch rejected",
			zap.String("method", string(route.Method)),
			zap.String("path", route.Path),
			zap.Error(err),
		)
		return nil, err
	}

	endpoint, err := routes.BuildURLStrict(mc.Route.Path, mc.Options.Params)
	if err != nil {
		return nil, err
	}
	endpoint += routes.BuildQueryString(mc.Options.Query)

	cfg := httpclient.RequestConfig{
		Method:  string(mc.Route.Method),
		Headers: mc.Headers,
		Cache:   mc.Options.Cache,
	}
	if mc.Route.Method != routes.GET {
		cfg.Body = mc.Data
	}
	return h.client.Request(ctx, endpoint, cfg)
}

// Dispatch looks up category/action and executes it
func (h *RouteHandler) Dispatch(ctx context.Context, category routes.Category, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	route, err := h.Registry().Lookup(category, action)
	if err != nil {
		return nil, err
	}
	return h.ExecuteRoute(ctx, route, data, opts)
}

// Auth dispatches an AUTH action
func (h *RouteHandler) Auth(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.AUTH, action, data, opts)
}

// Teachers dispatches a TEACHERS action
func (h *RouteHandler) Teachers(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.TEACHERS, action, data, opts)
}

// Students dispatches a STUDENTS action
func (h *RouteHandler) Students(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.STUDENTS, action, data, opts)
}

// Bookings dispatches a BOOKINGS action
func (h *RouteHandler) Bookings(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.BOOKINGS, action, data, opts)
}

// Schedule dispatches a SCHEDULE action
func (h *RouteHandler) Schedule(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.SCHEDULE, action, data, opts)
}

// Reviews dispatches a REVIEWS action
func (h *RouteHandler) Reviews(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.REVIEWS, action, data, opts)
}

// Contact dispatches a CONTACT action
func (h *RouteHandler) Contact(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.CONTACT, action, data, opts)
}

// Payments dispatches a PAYMENTS action
func (h *RouteHandler) Payments(ctx context.Context, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error) {
	return h.Dispatch(ctx, routes.PAYMENTS, action, data, opts)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apierrors.ErrAuthRequired):
		return "auth"
	case errors.Is(err, apierrors.ErrRateLimitExceeded):
		return "rate_limit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
