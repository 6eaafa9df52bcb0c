package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("cache_warm").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("cache_warm").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("cache_warm", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("cache_warm", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("cache_warm")))
}

func TestAddWarmed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddWarmed("blogs", true)
	m.AddWarmed("blogs", true)
	m.AddWarmed("donations", false)
	m.AddWarmed("", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.warmed.WithLabelValues("blogs", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warmed.WithLabelValues("donations", "error")))
}

func TestNilMetricsTracker(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("x").End(boom), boom)
	m.AddWarmed("blogs", true)
}
