// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Listings backend metrics
	ListingsRequestsTotal   *prometheus.CounterVec
	ListingsDurationSeconds *prometheus.HistogramVec

	// Outbound message metrics
	OutboundMessagesTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "staya_webhook_events_total",
				Help: "Total number of webhook events by platform, handler and status",
			},
			[]string{"platform", "handler", "status"}, // status: success, error, unmatched, panic
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "staya_webhook_duration_seconds",
				Help:    "Event processing duration in seconds by platform and handler",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"platform", "handler"},
		),

		ListingsRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "staya_listings_requests_total",
				Help: "Total number of nearby listings requests by status",
			},
			[]string{"status"}, // status: success, error, http_error, decode_error
		),

		ListingsDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "staya_listings_duration_seconds",
				Help:    "Nearby listings request duration in seconds by status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),

		OutboundMessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "staya_outbound_messages_total",
				Help: "Total number of messages sent to users by platform, kind and status",
			},
			[]string{"platform", "kind", "status"}, // kind: text, cards
		),

		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "staya_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for the outbound send limiter",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"platform"},
		),
	}
}

// RecordWebhook records one processed event.
func (m *Metrics) RecordWebhook(platform, handler, status string, duration float64) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(platform, handler, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(platform, handler).Observe(duration)
}

// RecordListingsRequest records one call to the listings backend.
func (m *Metrics) RecordListingsRequest(status string, duration float64) {
	if m == nil {
		return
	}
	m.ListingsRequestsTotal.WithLabelValues(status).Inc()
	m.ListingsDurationSeconds.WithLabelValues(status).Observe(duration)
}

// RecordOutbound records one message sent (or attempted) to a platform.
func (m *Metrics) RecordOutbound(platform, kind, status string) {
	if m == nil {
		return
	}
	m.OutboundMessagesTotal.WithLabelValues(platform, kind, status).Inc()
}

// RecordRateLimiterWait records time spent waiting for a send token.
func (m *Metrics) RecordRateLimiterWait(platform string, duration float64) {
	if m == nil {
		return
	}
	m.RateLimiterWaitDuration.WithLabelValues(platform).Observe(duration)
}
