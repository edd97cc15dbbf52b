package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yshengliao/antoree/observability/metrics"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"go.uber.org/zap"
)

// Header names managed by the client
const (
	HeaderAuthorization  = "Authorization"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"

	mimeJSON = "application/json"
)

// Client wraps net/http with default headers, per-call deadlines and the
// normalized Response / APIError result shapes.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
	metrics    metrics.Collector
	cache      *responseCache

	mu      sync.RWMutex
	headers map[string]string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the pooled http.Client, e.g. with a test transport
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(collector metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = metrics.OrNoOp(collector)
	}
}

// New creates a new client with connection pooling
func New(config Config, opts ...Option) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Transport: newTransport(config)},
		config:     config,
		logger:     zap.NewNop(),
		metrics:    metrics.NoOpCollector{},
		headers: map[string]string{
			HeaderContentType: mimeJSON,
			HeaderAccept:      mimeJSON,
		},
	}
	if config.Language != "" {
		c.headers[HeaderAcceptLanguage] = config.Language
	}

	for _, opt := range opts {
		opt(c)
	}

	if config.CacheSize > 0 {
		cache, err := newResponseCache(config.CacheSize)
		if err != nil {
			c.logger.Warn("response cache disabled", zap.Error(err))
		} else {
			c.cache = cache
		}
	}

	return c
}

// NewDefault creates a new client with default configuration
func NewDefault() *Client {
	return New(DefaultConfig())
}

func newTransport(config Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: config.KeepAlive,
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}
}

// BaseURL returns the URL every endpoint is appended to
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// SetAuthToken makes every following request carry "Bearer <token>".
// The change is visible to calls already being prepared on other
// goroutines.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.headers[HeaderAuthorization] = "Bearer " + token
	c.mu.Unlock()
}

// RemoveAuthToken drops the Authorization default header
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	delete(c.headers, HeaderAuthorization)
	c.mu.Unlock()
}

// ClearAuthToken is an alias of RemoveAuthToken
func (c *Client) ClearAuthToken() {
	c.RemoveAuthToken()
}

// AuthToken returns the bearer token currently set, if any
func (c *Client) AuthToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.headers[HeaderAuthorization]
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(v, "Bearer "), true
}

// SetLanguage sets the Accept-Language default header
func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	if lang == "" {
		delete(c.headers, HeaderAcceptLanguage)
	} else {
		c.headers[HeaderAcceptLanguage] = lang
	}
	c.mu.Unlock()
}

// Language returns the Accept-Language default header
func (c *Client) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers[HeaderAcceptLanguage]
}

// DefaultHeaders returns a copy of the default header map
func (c *Client) DefaultHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// PurgeCache empties the response cache
func (c *Client) PurgeCache() {
	if c.cache != nil {
		c.cache.purge()
	}
}

// Request sends a request to BaseURL+endpoint
func (c *Client) Request(ctx context.Context, endpoint string, cfg RequestConfig) (*Response, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}

	url := c.config.BaseURL + endpoint
	header := c.buildHeader(cfg.Headers)

	useCache := c.cache != nil && method == http.MethodGet &&
		(cfg.Cache == CacheForce || cfg.Cache == CacheReload)
	key := cacheKey(url, header.Get(HeaderAuthorization), header.Get(HeaderAcceptLanguage))
	if useCache && cfg.Cache == CacheForce {
		resp, hit := c.cache.get(key)
		c.metrics.RecordCacheLookup(hit)
		if hit {
			c.logger.Debug("served from cache", zap.String("method", method), zap.String("url", url))
			return resp, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if method != http.MethodGet && cfg.Body != nil {
		payload, err := json.Marshal(cfg.Body)
		if err != nil {
			return nil, apierrors.NewNetworkError(fmt.Errorf("failed to encode request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apierrors.NewNetworkError(err)
	}
	req.Header = header

	start := time.Now()
	c.metrics.RecordInFlight(1)
	resp, err := c.send(ctx, req)
	c.metrics.RecordInFlight(-1)
	elapsed := time.Since(start)

	if err != nil {
		status := apierrors.StatusCode(err)
		c.metrics.RecordRequest(method, status, elapsed)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.metrics.RecordRequest(method, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	if useCache {
		c.cache.put(key, resp)
	}
	return resp, nil
}

// send performs the round trip and normalizes the result
func (c *Client) send(ctx context.Context, req *http.Request) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	var data any
	if isJSON(httpResp.Header.Get(HeaderContentType)) {
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, apierrors.NewNetworkError(fmt.Errorf("invalid JSON response: %w", err))
			}
		}
	} else {
		data = string(raw)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, apierrors.NewAPIErrorWithDetails(
			errorMessage(data, httpResp),
			httpResp.StatusCode,
			data,
		)
	}

	return &Response{
		Success:    true,
		StatusCode: httpResp.StatusCode,
		Data:       data,
		Header:     httpResp.Header,
		Body:       raw,
	}, nil
}

// buildHeader merges the defaults with the per-call headers; per-call wins
func (c *Client) buildHeader(extra map[string]string) http.Header {
	header := make(http.Header, len(extra)+4)

	c.mu.RLock()
	for k, v := range c.headers {
		header.Set(k, v)
	}
	c.mu.RUnlock()

	for k, v := range extra {
		header.Set(k, v)
	}
	return header
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, endpoint string, cfg RequestConfig) (*Response, error) {
	cfg.Method = http.MethodGet
	return c.Request(ctx, endpoint, cfg)
}

// Post issues a POST request with body
func (c *Client) Post(ctx context.Context, endpoint string, body any, cfg RequestConfig) (*Response, error) {
	cfg.Method = http.MethodPost
	cfg.Body = body
	return c.Request(ctx, endpoint, cfg)
}

// Put issues a PUT request with body
func (c *Client) Put(ctx context.Context, endpoint string, body any, cfg RequestConfig) (*Response, error) {
	cfg.Method = http.MethodPut
	cfg.Body = body
	return c.Request(ctx, endpoint, cfg)
}

// Patch issues a PATCH request with body
func (c *Client) Patch(ctx context.Context, endpoint string, body any, cfg RequestConfig) (*Response, error) {
	cfg.Method = http.MethodPatch
	cfg.Body = body
	return c.Request(ctx, endpoint, cfg)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, endpoint string, cfg RequestConfig) (*Response, error) {
	cfg.Method = http.MethodDelete
	return c.Request(ctx, endpoint, cfg)
}

// Close closes idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// transportError maps a failed round trip to a timeout or network APIError
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.NewTimeoutError(err)
	}
	return apierrors.NewNetworkError(err)
}

// errorMessage prefers the server's "message" field
func errorMessage(data any, resp *http.Response) string {
	if m, ok := data.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
	}
	statusText := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
	if statusText == "" {
		statusText = http.StatusText(resp.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText)
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, mimeJSON)
	}
	return mediaType == mimeJSON
}
