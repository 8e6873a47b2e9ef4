package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveClock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveClock("clock_in", OutcomeOK)
	m.ObserveClock("clock_in", OutcomeOK)
	m.ObserveClock("clock_out", OutcomeRejected)

	assert.Equal(t, 2.0, counterValue(t, reg, "timesheets_clock_actions_total", map[string]string{"action": "clock_in", "outcome": OutcomeOK}))
	assert.Equal(t, 1.0, counterValue(t, reg, "timesheets_clock_actions_total", map[string]string{"action": "clock_out", "outcome": OutcomeRejected}))
}

func TestHandler(t *testing.T) {
	m := NewDefault()
	m.ObserveShift(8.5)
	m.ObserveJob("email", OutcomeOK)
	m.ObserveRequest("/health", "GET", 200, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "timesheets_shift_hours_count 1")
	assert.Contains(t, string(body), `timesheets_jobs_handled_total{outcome="ok",queue="email"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
