package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/vesta/pkg/config"
)

// AuditMetrics tracks the audit trail.
//
// Metrics:
//   - vesta_audit_records_total{status}
//   - vesta_audit_pruned_records_total
//   - vesta_audit_prune_runs_total{result}
type AuditMetrics struct {
	recordsTotal *prometheus.CounterVec
	prunedTotal  prometheus.Counter
	pruneRuns    *prometheus.CounterVec
}

// NewAuditMetrics creates and registers audit metrics.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "records_total",
				Help:      "Audit records by outcome (enqueued, dropped, stored, failed)",
			},
			[]string{"status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "pruned_records_total",
				Help:      "Audit records deleted by retention",
			},
		),

		pruneRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "prune_runs_total",
				Help:      "Retention runs by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(am.recordsTotal, am.prunedTotal, am.pruneRuns)
	return am
}

// RecordStatus counts one recorder outcome.
func (am *AuditMetrics) RecordStatus(status string) {
	am.recordsTotal.WithLabelValues(status).Inc()
}

// RecordPrune counts one retention run.
func (am *AuditMetrics) RecordPrune(deleted int64, err error) {
	if err != nil {
		am.pruneRuns.WithLabelValues("error").Inc()
	} else {
		am.pruneRuns.WithLabelValues("success").Inc()
	}
	if deleted > 0 {
		am.prunedTotal.Add(float64(deleted))
	}
}
