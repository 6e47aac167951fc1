package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET /api/goals", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("GET /api/goals", http.MethodGet, http.StatusUnauthorized, time.Millisecond)
	m.RemindersSent(3)
	m.ReminderErrors(1)
	m.InsightGenerated()
	m.StreakCalculated("good")
	m.StreakCalculated("good")
	m.StreakCalculated("attention")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET /api/goals", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRejections.WithLabelValues("401_unauthorized")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.remindersSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.insightsGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.streakCalculations.WithLabelValues("good")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"http_requests_total", "http_request_duration_seconds", "reminders_sent_total", "streak_calculations_total"} {
		assert.True(t, names[want], "missing metric family %s", want)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Second)
		m.RemindersSent(1)
		m.ReminderErrors(1)
		m.InsightGenerated()
		m.StreakCalculated("good")
	})
}
