package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("/cart", "GET", 200, 20*time.Millisecond)
	m.Observe("/cart", "GET", 200, 10*time.Millisecond)
	m.Observe("", "GET", 404, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "carshop_http_requests_total", map[string]string{"route": "/cart", "status": "200"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = counterValue(mfs, "carshop_http_requests_total", map[string]string{"route": "unknown", "status": "404"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestUpstreamMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstreamMetrics(reg)
	m.Observe("vehicle", "Vehicles", nil, 5*time.Millisecond)
	m.Observe("vehicle", "Vehicles", errors.New("timeout"), 5*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "carshop_upstream_calls_total", map[string]string{"service": "vehicle", "outcome": "success"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "carshop_upstream_calls_total", map[string]string{"service": "vehicle", "outcome": "error"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNilRegistererIsNoop(t *testing.T) {
	var h *HTTPMetrics
	h.Observe("/", "GET", 200, time.Second)
	NewHTTPMetrics(nil).Observe("/", "GET", 200, time.Second)
	NewUpstreamMetrics(nil).Observe("order", "Orders", nil, time.Second)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q has no series with labels %v", name, labels)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
