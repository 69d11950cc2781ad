// Package monitoring exposes Prometheus metrics for the booking and payment
// pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total bookings created in pending state",
		},
	)

	paymentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_completed_total",
			Help: "Total bookings transitioned to paid",
		},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	inventoryShortfalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_shortfalls_total",
			Help: "Line items whose deduction at payment confirmation fell short",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern, and status code",
		},
		[]string{"method", "route", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Payment provider API call durations by operation and outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
)

func RecordBookingCreated() {
	bookingsCreated.Inc()
}

func RecordPaymentCompleted() {
	paymentsCompleted.Inc()
}

// RecordWebhookEvent counts one webhook delivery. Outcome is one of
// processed, duplicate, ignored, unmatched, rejected.
func RecordWebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func RecordInventoryShortfall() {
	inventoryShortfalls.Inc()
}

func RecordHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

// ObserveGatewayRequest records one provider API call. Outcome is "ok" or
// "error".
func ObserveGatewayRequest(operation, outcome string, seconds float64) {
	gatewayRequestDuration.WithLabelValues(operation, outcome).Observe(seconds)
}
