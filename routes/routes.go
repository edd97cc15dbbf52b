// Package routes holds the declarative route table of the marketplace
// backend and the helpers that turn a route into a request URL.
package routes

import (
	"fmt"
	"sort"
	"time"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/validation"
)

// Method is an HTTP method accepted by the backend
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	PATCH  Method = "PATCH"
)

// RateLimit is a client-side sliding window policy
type RateLimit struct {
	Requests int   `yaml:"requests" json:"requests" validate:"gt=0"`
	WindowMs int64 `yaml:"window_ms" json:"windowMs" validate:"gt=0"`
}

// Window returns the window length as a duration
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMs) * time.Millisecond
}

// RouteConfig is a named contract of method, path template and policy flags.
// Path segments starting with ':' are placeholders filled by BuildURL.
type RouteConfig struct {
	Method       Method     `yaml:"method" json:"method" validate:"required,httpmethod"`
	Path         string     `yaml:"path" json:"path" validate:"required,routepath"`
	RequiresAuth bool       `yaml:"requires_auth" json:"requiresAuth"`
	Middleware   []string   `yaml:"middleware,omitempty" json:"middleware,omitempty" validate:"omitempty,dive,required"`
	RateLimit    *RateLimit `yaml:"rate_limit,omitempty" json:"rateLimit,omitempty"`
}

// clone returns a deep copy so callers cannot mutate the table
func (r RouteConfig) clone() RouteConfig {
	out := r
	if r.Middleware != nil {
		out.Middleware = append([]string(nil), r.Middleware...)
	}
	if r.RateLimit != nil {
		rl := *r.RateLimit
		out.RateLimit = &rl
	}
	return out
}

// Category groups related routes
type Category string

const (
	AUTH     Category = "AUTH"
	TEACHERS Category = "TEACHERS"
	STUDENTS Category = "STUDENTS"
	BOOKINGS Category = "BOOKINGS"
	SCHEDULE Category = "SCHEDULE"
	REVIEWS  Category = "REVIEWS"
	CONTACT  Category = "CONTACT"
	PAYMENTS Category = "PAYMENTS"
)

// Registry maps categories to their named routes.
// A Registry is read-only once built; Lookup hands out copies.
type Registry map[Category]map[string]RouteConfig

// RequestOptions are the caller-supplied extras of a single call
type RequestOptions struct {
	Headers map[string]string
	// Params fill :name placeholders in the path
	Params map[string]any
	// Query becomes the query string
	Query map[string]any
	// Cache selects the response cache mode of a GET route
	Cache httpclient.CacheMode
}

// Lookup resolves a route by category and action
func (r Registry) Lookup(category Category, action string) (RouteConfig, error) {
	actions, ok := r[category]
	if !ok {
		return RouteConfig{}, fmt.Errorf("%w: category %s", apierrors.ErrUnknownRoute, category)
	}
	route, ok := actions[action]
	if !ok {
		return RouteConfig{}, fmt.Errorf("%w: %s.%s", apierrors.ErrUnknownRoute, category, action)
	}
	return route.clone(), nil
}

// Categories returns the registered categories in sorted order
func (r Registry) Categories() []Category {
	out := make([]Category, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Actions returns the action names of a category in sorted order
func (r Registry) Actions(category Category) []string {
	out := make([]string, 0, len(r[category]))
	for a := range r[category] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the registry
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for c, actions := range r {
		m := make(map[string]RouteConfig, len(actions))
		for name, route := range actions {
			m[name] = route.clone()
		}
		out[c] = m
	}
	return out
}

// Merge returns a copy of r with the routes of other added or replaced
func (r Registry) Merge(other Registry) Registry {
	out := r.Clone()
	for c, actions := range other {
		if out[c] == nil {
			out[c] = make(map[string]RouteConfig, len(actions))
		}
		for name, route := range actions {
			out[c][name] = route.clone()
		}
	}
	return out
}

// Validate checks every entry has a method and a well-formed path
func (r Registry) Validate() error {
	v := validation.Default()
	for _, c := range r.Categories() {
		for _, name := range r.Actions(c) {
			route := r[c][name]
			if err := v.Validate(route); err != nil {
				return fmt.Errorf("route %s.%s: %w", c, name, err)
			}
		}
	}
	return nil
}
