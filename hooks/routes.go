// Package hooks keeps observable per-route request state on top of the
// dispatcher: whether a call is in flight, its last data and its last
// error.
package hooks

import (
	"context"
	"sync"

	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// Dispatcher resolves and executes a registry route
type Dispatcher interface {
	Dispatch(ctx context.Context, category routes.Category, action string, data any, opts *routes.RequestOptions) (*httpclient.Response, error)
}

// Key identifies the state of one route
type Key struct {
	Category routes.Category
	Action   string
}

func (k Key) String() string {
	return string(k.Category) + "." + k.Action
}

// State is the observable state of one route. Error is empty when the
// last call succeeded.
type State struct {
	Data    any
	Loading bool
	Error   string
}

// Listener is called after every state change. Changes are delivered
// one at a time in the order they were made, possibly on the goroutine
// of another caller.
type Listener func(key Key, state State)

type event struct {
	key   Key
	state State
}

// Routes tracks the state of every route called through it
type Routes struct {
	dispatcher Dispatcher
	logger     *zap.Logger

	mu        sync.Mutex
	states    map[Key]State
	seq       map[Key]uint64
	listeners map[int]Listener
	nextID    int

	pending  []event
	draining bool
}

// Option configures Routes
type Option func(*Routes)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Routes) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates Routes over dispatcher
func New(dispatcher Dispatcher, opts ...Option) *Routes {
	r := &Routes{
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
		states:     make(map[Key]State),
		seq:        make(map[Key]uint64),
		listeners:  make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExecuteRoute dispatches category/action and records the outcome. It
// returns nil when the call fails; the error is kept in the state.
//
// Only the most recently started call of a route may write its result.
// An older call that finishes later is dropped.
func (r *Routes) ExecuteRoute(ctx context.Context, category routes.Category, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	key := Key{Category: category, Action: action}

	r.mu.Lock()
	r.seq[key]++
	seq := r.seq[key]
	st := r.states[key]
	st.Loading = true
	st.Error = ""
	r.states[key] = st
	r.pending = append(r.pending, event{key, st})
	r.mu.Unlock()
	r.drain()

	resp, err := r.dispatcher.Dispatch(ctx, category, action, data, opts)

	r.mu.Lock()
	if r.seq[key] != seq {
		r.mu.Unlock()
		r.logger.Debug("dropping stale route result", zap.Stringer("route", key), zap.Uint64("seq", seq))
		if err != nil {
			return nil
		}
		return resp
	}
	st = r.states[key]
	st.Loading = false
	if err != nil {
		st.Error = err.Error()
		resp = nil
	} else {
		st.Data = resp.Data
		st.Error = ""
	}
	r.states[key] = st
	r.pending = append(r.pending, event{key, st})
	r.mu.Unlock()
	r.drain()

	if err != nil {
		r.logger.Debug("route call failed", zap.Stringer("route", key), zap.Error(err))
	}
	return resp
}

// GetState returns the state of category/action; a route never called
// reports the zero State.
func (r *Routes) GetState(category routes.Category, action string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[Key{Category: category, Action: action}]
}

// States returns a snapshot of every tracked state
func (r *Routes) States() map[Key]State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Key]State, len(r.states))
	for k, v := range r.states {
		out[k] = v
	}
	return out
}

// Reset forgets the state of category/action. A call still in flight
// for it will not write its result.
func (r *Routes) Reset(category routes.Category, action string) {
	key := Key{Category: category, Action: action}
	r.mu.Lock()
	delete(r.states, key)
	r.seq[key]++
	r.pending = append(r.pending, event{key: key})
	r.mu.Unlock()
	r.drain()
}

// Subscribe registers fn for state changes and returns its cancel func
func (r *Routes) Subscribe(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// drain delivers queued changes. Only one goroutine drains at a time so
// listeners see changes in the order they were recorded.
func (r *Routes) drain() {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		return
	}
	r.draining = true

	delivering := false
	defer func() {
		// a panicking listener must not leave the queue stuck
		if delivering {
			r.mu.Lock()
			r.draining = false
			r.mu.Unlock()
		}
	}()

	for len(r.pending) > 0 {
		ev := r.pending[0]
		r.pending = r.pending[1:]
		listeners := make([]Listener, 0, len(r.listeners))
		for _, fn := range r.listeners {
			listeners = append(listeners, fn)
		}
		r.mu.Unlock()

		delivering = true
		for _, fn := range listeners {
			fn(ev.key, ev.state)
		}
		delivering = false
		r.mu.Lock()
	}
	r.pending = nil
	r.draining = false
	r.mu.Unlock()
}

// Auth calls an AUTH route
func (r *Routes) Auth(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.AUTH, action, data, opts)
}

// Teachers calls a TEACHERS route
func (r *Routes) Teachers(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.TEACHERS, action, data, opts)
}

// Students calls a STUDENTS route
func (r *Routes) Students(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.STUDENTS, action, data, opts)
}

// Bookings calls a BOOKINGS route
func (r *Routes) Bookings(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.BOOKINGS, action, data, opts)
}

// Schedule calls a SCHEDULE route
func (r *Routes) Schedule(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.SCHEDULE, action, data, opts)
}

// Reviews calls a REVIEWS route
func (r *Routes) Reviews(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.REVIEWS, action, data, opts)
}

// Contact calls a CONTACT route
func (r *Routes) Contact(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.CONTACT, action, data, opts)
}

// Payments calls a PAYMENTS route
func (r *Routes) Payments(ctx context.Context, action string, data any, opts *routes.RequestOptions) *httpclient.Response {
	return r.ExecuteRoute(ctx, routes.PAYMENTS, action, data, opts)
}
