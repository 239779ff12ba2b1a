package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts checkout operations and their latency.
type CheckoutMetrics struct {
	Operations *prometheus.CounterVec
	LatencyMS  *prometheus.HistogramVec
	Payments   *prometheus.CounterVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "operations_total",
		Help:      "Total checkout operations by name and result.",
	}, []string{"operation", "result"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "operation_duration_ms",
		Help:      "Checkout operation latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"operation"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "payments_total",
		Help:      "Payment attempts by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(operations, latency, payments)
	return &CheckoutMetrics{Operations: operations, LatencyMS: latency, Payments: payments}
}

// Observe records one operation with its result and duration.
func (m *CheckoutMetrics) Observe(operation, result string, start time.Time) {
	m.Operations.WithLabelValues(operation, result).Inc()
	m.LatencyMS.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
