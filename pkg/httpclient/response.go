package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CacheMode selects how a GET request interacts with the response cache
type CacheMode string

const (
	// CacheDefault neither reads nor writes the cache
	CacheDefault CacheMode = ""
	// CacheNoStore is CacheDefault spelled out
	CacheNoStore CacheMode = "no-store"
	// CacheForce serves a cached response when present and stores misses
	CacheForce CacheMode = "force-cache"
	// CacheReload always hits the network and refreshes the cache
	CacheReload CacheMode = "reload"
)

// RequestConfig holds the per-call settings of Request
type RequestConfig struct {
	// Method defaults to GET
	Method string
	// Headers override the client's default headers
	Headers map[string]string
	// Body is JSON encoded for every method but GET
	Body any
	// Timeout overrides the client's default deadline
	Timeout time.Duration
	Cache   CacheMode
}

// Response is the only successful result shape
type Response struct {
	Success    bool
	StatusCode int
	// Data is the decoded JSON body (map, slice, scalar or nil) or the raw
	// text when the server did not declare application/json.
	Data   any
	Header http.Header
	// Body is the raw payload
	Body []byte
}

// JSON reports whether the payload was declared as JSON
func (r *Response) JSON() bool {
	return isJSON(r.Header.Get("Content-Type"))
}

// Decode unmarshals the raw JSON body into v
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if !r.JSON() {
		return fmt.Errorf("response is not JSON (Content-Type %q)", r.Header.Get("Content-Type"))
	}
	return json.Unmarshal(r.Body, v)
}

// Decode unmarshals resp into a fresh T
func Decode[T any](resp *Response) (T, error) {
	var out T
	if resp == nil {
		return out, fmt.Errorf("nil response")
	}
	err := resp.Decode(&out)
	return out, err
}

// clone copies a cached response so callers cannot mutate the cache entry
func (r *Response) clone() *Response {
	out := *r
	out.Header = r.Header.Clone()
	out.Body = append([]byte(nil), r.Body...)
	// Data may share maps with the cache entry; rebuild it from the body
	if out.JSON() && len(out.Body) > 0 {
		var data any
		if err := json.Unmarshal(out.Body, &data); err == nil {
			out.Data = data
		}
	}
	return &out
}
