package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the smart filters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FilterEvaluations *prometheus.CounterVec
	FilterSync        *prometheus.CounterVec
	AuditDuration     *prometheus.HistogramVec
}

// New registers the filter metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilterEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrapplications_filter_evaluations_total",
			Help: "Total number of single user filter evaluations",
		}, []string{"rule", "result"}),
		FilterSync: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrapplications_filter_sync_total",
			Help: "Total number of filter lifecycle synchronisations",
		}, []string{"operation"}),
		AuditDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrapplications_filter_audit_duration_seconds",
			Help:    "Duration of batch filter audits",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"rule"}),
	}
}

// ObserveEvaluation records one Evaluate call. Failed calls are counted under
// result="error".
func (m *Metrics) ObserveEvaluation(rule string, result bool, err error) {
	if m == nil {
		return
	}
	label := strconv.FormatBool(result)
	if err != nil {
		label = "error"
	}
	m.FilterEvaluations.WithLabelValues(rule, label).Inc()
}

// ObserveAudit records the duration of an Audit call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAudit(rule string, start time.Time) {
	if m == nil {
		return
	}
	m.AuditDuration.WithLabelValues(rule).Observe(time.Since(start).Seconds())
}

// IncrementSync records a lifecycle operation ("saved", "deleted", "failed").
func (m *Metrics) IncrementSync(operation string) {
	if m == nil {
		return
	}
	m.FilterSync.WithLabelValues(operation).Inc()
}
