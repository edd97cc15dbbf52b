package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxPaths bounds the per-path rejection counters of a MemoryCollector
const DefaultMaxPaths = 1000

// MemoryCollector keeps running totals in process. Rejections are counted
// per reason and per route path; the least recently rejected paths are
// evicted once maxPaths is reached.
type MemoryCollector struct {
	requests  atomic.Int64
	inFlight  atomic.Int64
	cacheHits atomic.Int64
	cacheMiss atomic.Int64

	mu         sync.Mutex
	byStatus   map[int]int64
	byMethod   map[string]int64
	byReason   map[string]int64
	byPath     *lru.Cache[string, int64]
	latencySum time.Duration
}

// Stats is a point-in-time copy of a MemoryCollector
type Stats struct {
	TotalRequests     int64            `json:"total_requests"`
	InFlight          int64            `json:"in_flight"`
	RequestsByStatus  map[int]int64    `json:"requests_by_status"`
	RequestsByMethod  map[string]int64 `json:"requests_by_method"`
	AverageLatency    time.Duration    `json:"average_latency"`
	RejectionsByCause map[string]int64 `json:"rejections_by_reason"`
	RejectionsByPath  map[string]int64 `json:"rejections_by_path"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
}

// NewMemoryCollector creates a collector tracking at most maxPaths paths
func NewMemoryCollector(maxPaths int) *MemoryCollector {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	byPath, _ := lru.New[string, int64](maxPaths)
	return &MemoryCollector{
		byStatus: make(map[int]int64),
		byMethod: make(map[string]int64),
		byReason: make(map[string]int64),
		byPath:   byPath,
	}
}

func (c *MemoryCollector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.requests.Add(1)

	c.mu.Lock()
	c.byStatus[statusCode]++
	c.byMethod[method]++
	c.latencySum += duration
	c.mu.Unlock()
}

func (c *MemoryCollector) RecordInFlight(delta int) {
	c.inFlight.Add(int64(delta))
}

func (c *MemoryCollector) RecordRejection(reason, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byReason[reason]++
	n, _ := c.byPath.Get(path)
	c.byPath.Add(path, n+1)
}

func (c *MemoryCollector) RecordCacheLookup(hit bool) {
	if hit {
		c.cacheHits.Add(1)
	} else {
		c.cacheMiss.Add(1)
	}
}

// Stats returns a snapshot
func (c *MemoryCollector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalRequests:     c.requests.Load(),
		InFlight:          c.inFlight.Load(),
		RequestsByStatus:  make(map[int]int64, len(c.byStatus)),
		RequestsByMethod:  make(map[string]int64, len(c.byMethod)),
		RejectionsByCause: make(map[string]int64, len(c.byReason)),
		RejectionsByPath:  make(map[string]int64, c.byPath.Len()),
		CacheHits:         c.cacheHits.Load(),
		CacheMisses:       c.cacheMiss.Load(),
	}
	for k, v := range c.byStatus {
		s.RequestsByStatus[k] = v
	}
	for k, v := range c.byMethod {
		s.RequestsByMethod[k] = v
	}
	for k, v := range c.byReason {
		s.RejectionsByCause[k] = v
	}
	for _, k := range c.byPath.Keys() {
		if v, ok := c.byPath.Peek(k); ok {
			s.RejectionsByPath[k] = v
		}
	}
	var total int64
	for _, v := range c.byStatus {
		total += v
	}
	if total > 0 {
		s.AverageLatency = c.latencySum / time.Duration(total)
	}
	return s
}

// Reset clears every counter
func (c *MemoryCollector) Reset() {
	c.requests.Store(0)
	c.inFlight.Store(0)
	c.cacheHits.Store(0)
	c.cacheMiss.Store(0)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byStatus = make(map[int]int64)
	c.byMethod = make(map[string]int64)
	c.byReason = make(map[string]int64)
	c.byPath.Purge()
	c.latencySum = 0
}
