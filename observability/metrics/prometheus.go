package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports client metrics to a Prometheus registry
type PrometheusCollector struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	rejections *prometheus.CounterVec
	cache      *prometheus.CounterVec
}

// NewPrometheusCollector creates the collectors and registers them on reg
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Requests sent to the backend by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "requests_in_flight",
			Help:      "Requests currently waiting for a response.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "rejections_total",
			Help:      "Dispatches aborted by a middleware before reaching the network.",
		}, []string{"reason", "path"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
	}

	for _, col := range []prometheus.Collector{c.requests, c.duration, c.inFlight, c.rejections, c.cache} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordRequest implements Collector
func (c *PrometheusCollector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordInFlight implements Collector
func (c *PrometheusCollector) RecordInFlight(delta int) {
	c.inFlight.Add(float64(delta))
}

// RecordRejection implements Collector
func (c *PrometheusCollector) RecordRejection(reason, path string) {
	c.rejections.WithLabelValues(reason, path).Inc()
}

// RecordCacheLookup implements Collector
func (c *PrometheusCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cache.WithLabelValues(result).Inc()
}
