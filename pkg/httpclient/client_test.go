package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
)

// roundTripFunc adapts a function to http.RoundTripper
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*httpclient.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = srv.URL + "/api"
	return httpclient.New(cfg), srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_RequestJSON(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "b1", "status": "pending"})
	})

	resp, err := client.Post(context.Background(), "/bookings/trial", map[string]any{"teacherId": "t1"}, httpclient.RequestConfig{})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, map[string]any{"id": "b1", "status": "pending"}, resp.Data)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/bookings/trial", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.JSONEq(t, `{"teacherId":"t1"}`, string(gotBody))

	type booking struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	b, err := httpclient.Decode[booking](resp)
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
}

func TestClient_DefaultsToGETWithoutBody(t *testing.T) {
	var method string
	var bodyLen int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		b, _ := io.ReadAll(r.Body)
		bodyLen = len(b)
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := client.Request(context.Background(), "/teachers", httpclient.RequestConfig{Body: map[string]any{"ignored": true}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
	assert.Zero(t, bodyLen)
}

func TestClient_TextResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})

	resp, err := client.Get(context.Background(), "/ping", httpclient.RequestConfig{})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Data)
	assert.False(t, resp.JSON())

	var v map[string]any
	assert.Error(t, resp.Decode(&v))
}

func TestClient_ErrorStatus(t *testing.T) {
	t.Run("server message", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		})

		_, err := client.Get(context.Background(), "/teachers/missing", httpclient.RequestConfig{})
		require.Error(t, err)

		apiErr, ok := apierrors.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "Not found", apiErr.Message)
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, map[string]any{"message": "Not found"}, apiErr.Details)
	})

	t.Run("status text fallback", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<h1>upstream down</h1>"))
		})

		_, err := client.Get(context.Background(), "/teachers", httpclient.RequestConfig{})
		apiErr, ok := apierrors.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "HTTP 502: Bad Gateway", apiErr.Message)
		assert.Equal(t, 502, apiErr.StatusCode)
		assert.Equal(t, "<h1>upstream down</h1>", apiErr.Details)
	})
}

func TestClient_Timeout(t *testing.T) {
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = "http://backend.invalid/api"

	// Never resolves until the request context is cancelled
	blocking := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})
	client := httpclient.New(cfg, httpclient.WithHTTPClient(&http.Client{Transport: blocking}))

	start := time.Now()
	_, err := client.Get(context.Background(), "/teachers", httpclient.RequestConfig{Timeout: 50 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, err)
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Request timeout", apiErr.Message)
	assert.Equal(t, 408, apiErr.StatusCode)
	assert.True(t, apierrors.IsTimeout(err))
	assert.Less(t, elapsed, time.Second)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestClient_NetworkError(t *testing.T) {
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = "http://backend.invalid/api"
	failing := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client := httpclient.New(cfg, httpclient.WithHTTPClient(&http.Client{Transport: failing}))

	_, err := client.Get(context.Background(), "/teachers", httpclient.RequestConfig{})
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "connection refused")
}

func TestClient_CallerCancellation(t *testing.T) {
	cfg := httpclient.DefaultConfig()
	blocking := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})
	client := httpclient.New(cfg, httpclient.WithHTTPClient(&http.Client{Transport: blocking}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := client.Get(ctx, "/teachers", httpclient.RequestConfig{})
	require.Error(t, err)
	assert.True(t, apierrors.IsNetwork(err))
	assert.False(t, apierrors.IsTimeout(err))
}

func TestClient_AuthTokenRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var auth []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx := context.Background()

	client.SetAuthToken("t")
	token, ok := client.AuthToken()
	assert.True(t, ok)
	assert.Equal(t, "t", token)

	_, err := client.Get(ctx, "/auth/me", httpclient.RequestConfig{})
	require.NoError(t, err)

	client.RemoveAuthToken()
	_, ok = client.AuthToken()
	assert.False(t, ok)
	_, err = client.Get(ctx, "/auth/me", httpclient.RequestConfig{})
	require.NoError(t, err)

	client.SetAuthToken("u")
	client.ClearAuthToken()
	_, err = client.Get(ctx, "/auth/me", httpclient.RequestConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer t", "", ""}, auth)
}

func TestClient_HeaderPrecedence(t *testing.T) {
	var got http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, nil)
	})

	client.SetAuthToken("default")
	client.SetLanguage("vi")
	assert.Equal(t, "vi", client.Language())

	_, err := client.Get(context.Background(), "/teachers", httpclient.RequestConfig{
		Headers: map[string]string{
			"authorization": "Bearer override",
			"X-Trace":       "abc",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer override", got.Get("Authorization"))
	assert.Equal(t, "vi", got.Get("Accept-Language"))
	assert.Equal(t, "abc", got.Get("X-Trace"))

	// Per-call headers never leak into the defaults
	assert.Equal(t, "Bearer default", client.DefaultHeaders()["Authorization"])

	client.SetLanguage("")
	_, ok := client.DefaultHeaders()["Accept-Language"]
	assert.False(t, ok)
}

func TestClient_Methods(t *testing.T) {
	var methods []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()
	cfg := httpclient.RequestConfig{}

	_, err := client.Get(ctx, "/x", cfg)
	require.NoError(t, err)
	_, err = client.Post(ctx, "/x", nil, cfg)
	require.NoError(t, err)
	_, err = client.Put(ctx, "/x", map[string]any{}, cfg)
	require.NoError(t, err)
	_, err = client.Patch(ctx, "/x", map[string]any{}, cfg)
	require.NoError(t, err)
	resp, err := client.Delete(ctx, "/x", cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"GET", "POST", "PUT", "PATCH", "DELETE"}, methods)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "", resp.Data)
}

func TestClient_ForceCache(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"call": n})
	})
	ctx := context.Background()
	force := httpclient.RequestConfig{Cache: httpclient.CacheForce}

	first, err := client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	second, err := client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first.Data, second.Data)

	// Mutating a cached copy does not corrupt the cache
	second.Data.(map[string]any)["call"] = "tampered"
	third, err := client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, float64(1), third.Data.(map[string]any)["call"])

	// Default mode bypasses the cache
	fresh, err := client.Get(ctx, "/teachers", httpclient.RequestConfig{})
	require.NoError(t, err)
	assert.Equal(t, float64(2), fresh.Data.(map[string]any)["call"])

	// Reload refreshes the entry
	_, err = client.Get(ctx, "/teachers", httpclient.RequestConfig{Cache: httpclient.CacheReload})
	require.NoError(t, err)
	cached, err := client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, float64(3), cached.Data.(map[string]any)["call"])

	// A different token is a different cache entry
	client.SetAuthToken("someone")
	_, err = client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load())

	client.PurgeCache()
	client.RemoveAuthToken()
	_, err = client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, int32(5), hits.Load())
}

type recordingCollector struct {
	mu       sync.Mutex
	statuses []int
	inFlight int
	lookups  []bool
}

func (r *recordingCollector) RecordRequest(method string, statusCode int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, statusCode)
}

func (r *recordingCollector) RecordInFlight(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight += delta
}

func (r *recordingCollector) RecordRejection(reason, path string) {}

func (r *recordingCollector) RecordCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, hit)
}

func TestClient_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/missing" {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	rec := &recordingCollector{}
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = srv.URL + "/api"
	client := httpclient.New(cfg, httpclient.WithMetrics(rec))
	ctx := context.Background()

	_, err := client.Get(ctx, "/teachers", httpclient.RequestConfig{Cache: httpclient.CacheForce})
	require.NoError(t, err)
	_, err = client.Get(ctx, "/teachers", httpclient.RequestConfig{Cache: httpclient.CacheForce})
	require.NoError(t, err)
	_, err = client.Get(ctx, "/missing", httpclient.RequestConfig{})
	require.Error(t, err)

	assert.Equal(t, []int{200, 404}, rec.statuses)
	assert.Equal(t, 0, rec.inFlight)
	assert.Equal(t, []bool{false, true}, rec.lookups)
}

func TestNew_Defaults(t *testing.T) {
	client := httpclient.New(httpclient.Config{Language: "en"})
	assert.Equal(t, httpclient.DefaultBaseURL, client.BaseURL())
	assert.Equal(t, "en", client.Language())
	headers := client.DefaultHeaders()
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "application/json", headers["Accept"])
	client.Close()
}

func TestClient_CacheVariesByLanguage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"lang": r.Header.Get("Accept-Language")})
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = srv.URL + "/api"
	client := httpclient.New(cfg)
	ctx := context.Background()
	force := httpclient.RequestConfig{Cache: httpclient.CacheForce}

	client.SetLanguage("vi")
	resp, err := client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, "vi", resp.Data.(map[string]any)["lang"])

	client.SetLanguage("en")
	resp, err = client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Data.(map[string]any)["lang"])
	assert.Equal(t, int32(2), hits.Load())

	client.SetLanguage("vi")
	resp, err = client.Get(ctx, "/teachers", force)
	require.NoError(t, err)
	assert.Equal(t, "vi", resp.Data.(map[string]any)["lang"])
	assert.Equal(t, int32(2), hits.Load())
}
