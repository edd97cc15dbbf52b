// Package health checks what the client depends on: the backend API and
// the store holding the session.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/storage"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check tests one component
type Check func(ctx context.Context) Result

// Result represents the result of a check
type Result struct {
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// Checker runs named checks concurrently, each under its own timeout
type Checker struct {
	timeout time.Duration

	mu      sync.RWMutex
	checks  map[string]Check
	results map[string]Result
}

// NewChecker creates a checker; timeout bounds every single check
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		timeout: timeout,
		checks:  make(map[string]Check),
		results: make(map[string]Result),
	}
}

// Register registers a check, replacing one with the same name
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Unregister removes a check and its last result
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
	delete(c.results, name)
}

// Names returns the registered check names, sorted
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every registered check and returns their results
func (c *Checker) Check(ctx context.Context) map[string]Result {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make(map[string]Result, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, check := range checks {
		wg.Add(1)
		go func(n string, check Check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			result := check(checkCtx)
			result.Duration = time.Since(start)
			result.LastChecked = time.Now()

			mu.Lock()
			results[n] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	c.mu.Lock()
	for name, result := range results {
		c.results[name] = result
	}
	c.mu.Unlock()
	return results
}

// Results returns the results of the last Check
func (c *Checker) Results() map[string]Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Result, len(c.results))
	for name, result := range c.results {
		out[name] = result
	}
	return out
}

// Overall folds results into one status: any unhealthy wins over degraded
func Overall(results map[string]Result) Status {
	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// Getter is the part of the HTTP client an endpoint check needs
type Getter interface {
	Get(ctx context.Context, endpoint string, cfg httpclient.RequestConfig) (*httpclient.Response, error)
	BaseURL() string
}

// EndpointCheck GETs endpoint through client. Responses slower than slow
// are reported as degraded; zero disables that.
func EndpointCheck(client Getter, endpoint string, slow time.Duration) Check {
	return func(ctx context.Context) Result {
		url := client.BaseURL() + endpoint
		start := time.Now()
		resp, err := client.Get(ctx, endpoint, httpclient.RequestConfig{})
		elapsed := time.Since(start)
		if err != nil {
			return Result{
				Status:  StatusUnhealthy,
				Message: "API unreachable",
				Details: map[string]any{
					"url":    url,
					"status": apierrors.StatusCode(err),
					"error":  err.Error(),
				},
			}
		}

		result := Result{
			Status:  StatusHealthy,
			Message: "API reachable",
			Details: map[string]any{
				"url":    url,
				"status": resp.StatusCode,
			},
		}
		if slow > 0 && elapsed > slow {
			result.Status = StatusDegraded
			result.Message = "API responding slowly"
		}
		return result
	}
}

// checkKey is written and removed by StoreCheck
const checkKey = "health_check"

// StoreCheck round-trips a value through store
func StoreCheck(store storage.Store) Check {
	return func(ctx context.Context) Result {
		value := time.Now().UTC().Format(time.RFC3339Nano)
		if err := store.Set(ctx, checkKey, value); err != nil {
			return storeFailure("write failed", err)
		}
		got, err := store.Get(ctx, checkKey)
		if err != nil {
			return storeFailure("read failed", err)
		}
		if err := store.Remove(ctx, checkKey); err != nil {
			return storeFailure("remove failed", err)
		}
		if got != value {
			return Result{Status: StatusDegraded, Message: "store returned a different value"}
		}
		return Result{Status: StatusHealthy, Message: "store writable"}
	}
}

func storeFailure(message string, err error) Result {
	return Result{
		Status:  StatusUnhealthy,
		Message: message,
		Details: map[string]any{"error": err.Error()},
	}
}
