// Package metrics defines the Prometheus metrics exposed by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Campus Dual poller metrics
	PollerFetchesTotal  *prometheus.CounterVec
	PollerFetchDuration prometheus.Histogram
	PollerChangesTotal  prometheus.Counter

	// Bot metrics
	BotEventsTotal          *prometheus.CounterVec
	BotNotificationsTotal   *prometheus.CounterVec
	ActiveConversationCount prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusplan_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusplan_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"route"},
		),

		PollerFetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusplan_poller_fetches_total",
				Help: "Total number of Campus Dual distribution fetches by status",
			},
			[]string{"status"}, // status: success, error
		),

		PollerFetchDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "campusplan_poller_fetch_duration_seconds",
				Help:    "Campus Dual distribution fetch duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		PollerChangesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "campusplan_poller_changes_total",
				Help: "Total number of detected exam distribution changes",
			},
		),

		BotEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusplan_bot_events_total",
				Help: "Total number of handled bot events by kind",
			},
			[]string{"kind"}, // kind: command, callback, text
		),

		BotNotificationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusplan_bot_notifications_total",
				Help: "Total number of sent result notifications by status",
			},
			[]string{"status"}, // status: success, error
		),

		ActiveConversationCount: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "campusplan_bot_active_conversations",
				Help: "Number of chat conversations currently held in memory",
			},
		),
	}
}

// RecordHTTP records one handled HTTP request.
func (m *Metrics) RecordHTTP(route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordFetch records one Campus Dual distribution fetch.
func (m *Metrics) RecordFetch(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PollerFetchesTotal.WithLabelValues(status).Inc()
	m.PollerFetchDuration.Observe(duration.Seconds())
}

// RecordBotEvent records one handled bot event.
func (m *Metrics) RecordBotEvent(kind string) {
	if m == nil {
		return
	}
	m.BotEventsTotal.WithLabelValues(kind).Inc()
}

// RecordNotification records one sent (or failed) notification.
func (m *Metrics) RecordNotification(status string) {
	if m == nil {
		return
	}
	m.BotNotificationsTotal.WithLabelValues(status).Inc()
}
