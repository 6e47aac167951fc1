// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the application records to. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authRejections      *prometheus.CounterVec
	remindersSent       prometheus.Counter
	reminderErrors      prometheus.Counter
	insightsGenerated   prometheus.Counter
	streakCalculations  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Users reminded about pending goal updates",
		}),
		reminderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_errors_total",
			Help: "Users whose reminder could not be processed",
		}),
		insightsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_generated_total",
			Help: "Insights generated by the language model",
		}),
		streakCalculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streak_calculations_total",
				Help: "Streak summaries computed, by resulting status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.authRejections,
		m.remindersSent,
		m.reminderErrors,
		m.insightsGenerated,
		m.streakCalculations,
	)
	return m
}

// ObserveRequest records one served HTTP request. pattern should be the
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(pattern, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(pattern, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(pattern, method).Observe(elapsed.Seconds())

	switch status {
	case http.StatusUnauthorized:
		m.authRejections.WithLabelValues("401_unauthorized").Inc()
	case http.StatusForbidden:
		m.authRejections.WithLabelValues("403_forbidden").Inc()
	}
}

// RemindersSent adds n delivered reminders
func (m *Metrics) RemindersSent(n int) {
	if m == nil {
		return
	}
	m.remindersSent.Add(float64(n))
}

// ReminderErrors adds n failed reminders
func (m *Metrics) ReminderErrors(n int) {
	if m == nil {
		return
	}
	m.reminderErrors.Add(float64(n))
}

// InsightGenerated counts one generated insight
func (m *Metrics) InsightGenerated() {
	if m == nil {
		return
	}
	m.insightsGenerated.Inc()
}

// StreakCalculated counts one streak summary with the given status
func (m *Metrics) StreakCalculated(status string) {
	if m == nil {
		return
	}
	m.streakCalculations.WithLabelValues(status).Inc()
}
