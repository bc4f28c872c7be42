package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEvaluation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEvaluation("app_accepted", true, nil)
	m.ObserveEvaluation("app_accepted", true, nil)
	m.ObserveEvaluation("app_accepted", false, nil)
	m.ObserveEvaluation("app_accepted", false, errors.New("db down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilterEvaluations.WithLabelValues("app_accepted", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterEvaluations.WithLabelValues("app_accepted", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterEvaluations.WithLabelValues("app_accepted", "error")))
}

func TestObserveAuditAndSync(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAudit("app_exists", time.Now())
	m.IncrementSync("saved")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterSync.WithLabelValues("saved")))

	count, err := testutil.GatherAndCount(reg, "hrapplications_filter_audit_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveEvaluation("app_exists", true, nil)
		m.ObserveAudit("app_exists", time.Now())
		m.IncrementSync("deleted")
	})
}
