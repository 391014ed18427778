package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records storefront request outcomes.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carshop_http_request_duration_seconds",
		Help:    "Duration of storefront HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carshop_http_requests_total",
		Help: "Storefront HTTP requests by route and status.",
	}, []string{"route", "method", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{duration: duration, requests: requests}
}

// Observe records one finished request.
func (m *HTTPMetrics) Observe(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// UpstreamMetrics records calls to the GraphQL services.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream call metrics on reg.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carshop_upstream_call_duration_seconds",
		Help:    "Duration of GraphQL calls to upstream services in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carshop_upstream_calls_total",
		Help: "GraphQL calls to upstream services by outcome.",
	}, []string{"service", "operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &UpstreamMetrics{duration: duration, calls: calls}
}

// Observe records one upstream call.
func (m *UpstreamMetrics) Observe(service, operation string, err error, elapsed time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	service = normalizeLabel(service)
	operation = normalizeLabel(operation)
	m.duration.WithLabelValues(service, operation).Observe(elapsed.Seconds())
	m.calls.WithLabelValues(service, operation, outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
