package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/vesta/pkg/config"
)

// CacheMetrics tracks the analysis result cache.
//
//	vesta_cache_lookups_total{cache, result="hit"|"miss"}
//	vesta_cache_entries{cache}
//	vesta_cache_evictions_total{cache}
//
// Hit ratio:
//
//	sum(rate(vesta_cache_lookups_total{result="hit"}[5m]))
//	  / sum(rate(vesta_cache_lookups_total[5m]))
type CacheMetrics struct {
	lookups   *prometheus.CounterVec
	entries   *prometheus.GaugeVec
	evictions *prometheus.CounterVec
}

// NewCacheMetrics registers the cache series on registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result (hit or miss).",
		}, []string{"cache", "result"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_entries",
			Help:      "Entries currently held.",
		}, []string{"cache"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted to make room.",
		}, []string{"cache"}),
	}
	registry.MustRegister(cm.lookups, cm.entries, cm.evictions)
	return cm
}

// RecordLookup counts one lookup against cache.
func (cm *CacheMetrics) RecordLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cm.lookups.WithLabelValues(cache, result).Inc()
}

func (cm *CacheMetrics) setEntries(cache string, n int) {
	cm.entries.WithLabelValues(cache).Set(float64(n))
}

func (cm *CacheMetrics) evicted(cache string) {
	cm.evictions.WithLabelValues(cache).Inc()
}
