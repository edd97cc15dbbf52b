// Package backend is an in-process fake of the marketplace REST API used
// by tests. It issues real HS256 tokens, enforces bearer auth on the
// protected routes and records every request it receives.
package backend

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yshengliao/antoree/api"
	"github.com/yshengliao/antoree/auth"
	"github.com/yshengliao/antoree/internal/testutil/fixture"
)

// Request is a request received by the backend
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is a running fake API
type Backend struct {
	*httptest.Server
	Issuer *auth.TokenIssuer

	echo *echo.Echo

	mu       sync.Mutex
	requests []Request
	bookings map[string]api.Booking
	payments map[string]api.Payment
	schedule map[string]api.Schedule
	nextID   int
	delay    map[string]time.Duration
}

// New starts a backend; it is closed when the test ends
func New(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		Issuer:   auth.NewTokenIssuer(fixture.Secret, time.Hour, "antoree-test"),
		echo:     echo.New(),
		bookings: make(map[string]api.Booking),
		payments: make(map[string]api.Payment),
		schedule: make(map[string]api.Schedule),
		delay:    make(map[string]time.Duration),
	}
	b.echo.HideBanner = true
	b.echo.HidePort = true
	b.echo.Use(b.record)
	b.routes()

	b.Server = httptest.NewServer(b.echo)
	t.Cleanup(b.Close)
	return b
}

// BaseURL is the URL to configure the client with
func (b *Backend) BaseURL() string {
	return b.URL + "/api"
}

// Requests returns the requests received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request
func (b *Backend) LastRequest() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}, false
	}
	return b.requests[len(b.requests)-1], true
}

// Reset forgets the recorded requests
func (b *Backend) Reset() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

// Delay makes requests whose path (without /api) equals path wait d
func (b *Backend) Delay(path string, d time.Duration) {
	b.mu.Lock()
	b.delay[path] = d
	b.mu.Unlock()
}

// Token issues a token for the fixture student
func (b *Backend) Token() string {
	u := fixture.SampleStudent()
	token, err := b.Issuer.Issue(u.ID, u.Email, u.Name, u.Role)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		path := strings.TrimPrefix(req.URL.Path, "/api")
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: req.Method,
			Path:   path,
			Query:  req.URL.RawQuery,
			Header: req.Header.Clone(),
			Body:   body,
		})
		d := b.delay[path]
		b.mu.Unlock()

		if d > 0 {
			select {
			case <-time.After(d):
			case <-req.Context().Done():
				return req.Context().Err()
			}
		}
		return next(c)
	}
}

// requireAuth verifies the bearer token and stores its claims
func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			return fail(c, http.StatusUnauthorized, "Unauthorized")
		}
		claims, err := b.Issuer.Verify(token)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "Invalid token")
		}
		c.Set("claims", claims)
		return next(c)
	}
}

func (b *Backend) newID(prefix string) string {
	b.nextID++
	return prefix + "-" + strconv.Itoa(b.nextID)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, fixture.SampleError(message))
}

func claimsOf(c echo.Context) *auth.Claims {
	claims, _ := c.Get("claims").(*auth.Claims)
	return claims
}
