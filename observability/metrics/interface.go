// Package metrics provides metrics collection interfaces and implementations
// for the API client.
package metrics

import (
	"time"
)

// Collector records client-side request metrics
type Collector interface {
	// RecordRequest records a finished call. statusCode is 0 for transport
	// failures and 408 for client timeouts.
	RecordRequest(method string, statusCode int, duration time.Duration)

	// RecordInFlight adjusts the number of requests on the wire
	RecordInFlight(delta int)

	// RecordRejection records a dispatch aborted by a middleware
	RecordRejection(reason, path string)

	// RecordCacheLookup records a response cache lookup
	RecordCacheLookup(hit bool)
}

// NoOpCollector is a no-op implementation of Collector
type NoOpCollector struct{}

func (NoOpCollector) RecordRequest(method string, statusCode int, duration time.Duration) {}
func (NoOpCollector) RecordInFlight(delta int)                                            {}
func (NoOpCollector) RecordRejection(reason, path string)                                 {}
func (NoOpCollector) RecordCacheLookup(hit bool)                                          {}

// OrNoOp returns c, or a NoOpCollector when c is nil
func OrNoOp(c Collector) Collector {
	if c == nil {
		return NoOpCollector{}
	}
	return c
}
