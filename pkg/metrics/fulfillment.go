package metrics

import "github.com/prometheus/client_golang/prometheus"

// FulfillmentMetrics counts checkout orchestrations by outcome so flagged
// orders surface on a dashboard instead of only in logs.
type FulfillmentMetrics struct {
	orders *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment counters on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_orders_total",
		Help: "Order fulfillment runs by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(orders)
	return &FulfillmentMetrics{orders: orders}
}

// ObserveOrder records one fulfillment run outcome
// (complete, needs_review, provisioning_failed, payment_rejected, rejected).
func (f *FulfillmentMetrics) ObserveOrder(outcome string) {
	if f == nil || f.orders == nil {
		return
	}
	f.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}
