package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation"
)

// analysisCache is the cache label for the engine's result cache.
const analysisCache = "analysis"

// Collector owns the Prometheus registry and every vesta metric. It
// satisfies engine.Metrics, recorder.Metrics and retention.Metrics, so one
// Collector is handed to each component.
//
// All Record methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	moderation *ModerationMetrics
	audit      *AuditMetrics
	http       *HTTPMetrics
	cache      *CacheMetrics

	routes *CardinalityLimiter
}

// NewCollector creates a collector. A nil registry gets a fresh one with the
// Go runtime and process collectors registered.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		moderation: NewModerationMetrics(cfg, registry),
		audit:      NewAuditMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
		cache:      NewCacheMetrics(cfg, registry),
		routes:     NewCardinalityLimiter(64),
	}
}

// RecordAnalysis records one analysed comment.
func (c *Collector) RecordAnalysis(action moderation.Action, duration time.Duration, flags []moderation.Flag, cached bool) {
	if !c.config.Enabled {
		return
	}

	c.moderation.RecordAnalysis(string(action), duration, flags)
	c.cache.RecordLookup(analysisCache, cached)
}

// RecordFailure records an analyzer or sink failure by stage.
func (c *Collector) RecordFailure(stage string) {
	if !c.config.Enabled {
		return
	}
	c.moderation.RecordFailure(stage)
}

// RecordBatch records the size of a batch request.
func (c *Collector) RecordBatch(size int) {
	if !c.config.Enabled {
		return
	}
	c.moderation.RecordBatch(size)
}

// RecordAudit records an audit recorder outcome ("enqueued", "dropped",
// "stored" or "failed").
func (c *Collector) RecordAudit(status string) {
	if !c.config.Enabled {
		return
	}
	c.audit.RecordStatus(status)
}

// RecordPrune records a retention run.
func (c *Collector) RecordPrune(deleted int64, err error) {
	if !c.config.Enabled {
		return
	}
	c.audit.RecordPrune(deleted, err)
}

// UpdateCacheSize sets the current number of cached analyses.
func (c *Collector) UpdateCacheSize(size int) {
	if !c.config.Enabled {
		return
	}
	c.cache.setEntries(analysisCache, size)
}

// RecordCacheEviction records an entry evicted from the analysis cache.
func (c *Collector) RecordCacheEviction() {
	if !c.config.Enabled {
		return
	}
	c.cache.evicted(analysisCache)
}

// RecordHTTPRequest records a served request. Routes beyond the cardinality
// limit are folded into "other".
func (c *Collector) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if !c.routes.Allow(route) {
		route = "other"
	}
	c.http.RecordRequest(route, code, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// CardinalityLimiter caps the number of distinct values a label may take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or there is room for it.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of distinct values admitted.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
