package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation"
)

// ModerationMetrics tracks the analysis engine.
//
// Metrics:
//   - vesta_moderation_analyses_total{action}
//   - vesta_moderation_analysis_duration_seconds{action}
//   - vesta_moderation_flags_total{kind}
//   - vesta_moderation_failures_total{stage}
//   - vesta_moderation_batch_size
type ModerationMetrics struct {
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	flagsTotal       *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec
	batchSize        prometheus.Histogram
}

// NewModerationMetrics creates and registers moderation metrics.
func NewModerationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ModerationMetrics {
	mm := &ModerationMetrics{
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "moderation",
				Name:      "analyses_total",
				Help:      "Total number of comments analyzed, by recommended action",
			},
			[]string{"action"},
		),

		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "moderation",
				Name:      "analysis_duration_seconds",
				Help:      "Time to analyze a single comment",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"action"},
		),

		flagsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "moderation",
				Name:      "flags_total",
				Help:      "Total number of flags raised, by kind",
			},
			[]string{"kind"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "moderation",
				Name:      "failures_total",
				Help:      "Analyzer and sink failures, by stage",
			},
			[]string{"stage"},
		),

		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "moderation",
				Name:      "batch_size",
				Help:      "Number of comments per batch request",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}

	registry.MustRegister(
		mm.analysesTotal,
		mm.analysisDuration,
		mm.flagsTotal,
		mm.failuresTotal,
		mm.batchSize,
	)

	return mm
}

// RecordAnalysis counts one analysis and its flags.
func (mm *ModerationMetrics) RecordAnalysis(action string, duration time.Duration, flags []moderation.Flag) {
	mm.analysesTotal.WithLabelValues(action).Inc()
	mm.analysisDuration.WithLabelValues(action).Observe(duration.Seconds())
	for _, f := range flags {
		mm.flagsTotal.WithLabelValues(string(f.Kind)).Inc()
	}
}

// RecordFailure counts one failure at stage.
func (mm *ModerationMetrics) RecordFailure(stage string) {
	mm.failuresTotal.WithLabelValues(stage).Inc()
}

// RecordBatch observes a batch size.
func (mm *ModerationMetrics) RecordBatch(size int) {
	mm.batchSize.Observe(float64(size))
}
