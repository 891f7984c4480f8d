package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CarrierMetrics records outcomes of carrier API calls so auth failures can
// be told apart from shipment-content failures on a dashboard.
type CarrierMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewCarrierMetrics registers the carrier call metrics on the provided registerer.
func NewCarrierMetrics(reg prometheus.Registerer) *CarrierMetrics {
	if reg == nil {
		return &CarrierMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrier_call_duration_seconds",
		Help:    "Duration of carrier API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carrier_calls_total",
		Help: "Carrier API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &CarrierMetrics{
		duration: duration,
		calls:    calls,
	}
}

// ObserveCall records one carrier call with its duration and outcome
// (ok, auth_error, carrier_error, transport_error).
func (c *CarrierMetrics) ObserveCall(operation, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	if c.duration != nil {
		c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
	}
	if c.calls != nil {
		c.calls.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
