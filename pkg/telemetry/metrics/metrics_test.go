package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation"
)

func newTestCollector(enabled bool) *Collector {
	return NewCollector(&config.MetricsConfig{Enabled: enabled, Namespace: "vesta"}, prometheus.NewRegistry())
}

func TestCollector_RecordAnalysis(t *testing.T) {
	c := newTestCollector(true)

	flags := []moderation.Flag{
		{Kind: moderation.FlagToxicity, Confidence: 0.8},
		{Kind: moderation.FlagSpam, Confidence: 0.6},
	}
	c.RecordAnalysis(moderation.ActionReview, 2*time.Millisecond, flags, false)
	c.RecordAnalysis(moderation.ActionReview, time.Millisecond, nil, true)
	c.RecordAnalysis(moderation.ActionApprove, time.Millisecond, nil, false)

	if got := testutil.ToFloat64(c.moderation.analysesTotal.WithLabelValues("review")); got != 2 {
		t.Errorf("Expected 2 review analyses, got %v", got)
	}
	if got := testutil.ToFloat64(c.moderation.analysesTotal.WithLabelValues("approve")); got != 1 {
		t.Errorf("Expected 1 approve analysis, got %v", got)
	}
	if got := testutil.ToFloat64(c.moderation.flagsTotal.WithLabelValues("toxicity")); got != 1 {
		t.Errorf("Expected 1 toxicity flag, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.lookups.WithLabelValues(analysisCache, "hit")); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.lookups.WithLabelValues(analysisCache, "miss")); got != 2 {
		t.Errorf("Expected 2 cache misses, got %v", got)
	}
	if got := testutil.CollectAndCount(c.moderation.analysisDuration); got != 2 {
		t.Errorf("Expected 2 duration series, got %d", got)
	}
}

func TestCollector_FailuresAndBatches(t *testing.T) {
	c := newTestCollector(true)

	c.RecordFailure("toxicity")
	c.RecordFailure("toxicity")
	c.RecordFailure("audit")
	c.RecordBatch(10)

	if got := testutil.ToFloat64(c.moderation.failuresTotal.WithLabelValues("toxicity")); got != 2 {
		t.Errorf("Expected 2 toxicity failures, got %v", got)
	}
	if got := testutil.CollectAndCount(c.moderation.batchSize); got != 1 {
		t.Errorf("Expected batch histogram to be collected, got %d", got)
	}
}

func TestCollector_Audit(t *testing.T) {
	c := newTestCollector(true)

	c.RecordAudit("enqueued")
	c.RecordAudit("stored")
	c.RecordAudit("dropped")
	c.RecordPrune(5, nil)
	c.RecordPrune(0, errors.New("locked"))

	if got := testutil.ToFloat64(c.audit.recordsTotal.WithLabelValues("dropped")); got != 1 {
		t.Errorf("Expected 1 dropped record, got %v", got)
	}
	if got := testutil.ToFloat64(c.audit.prunedTotal); got != 5 {
		t.Errorf("Expected 5 pruned, got %v", got)
	}
	if got := testutil.ToFloat64(c.audit.pruneRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed prune run, got %v", got)
	}
}

func TestCollector_Cache(t *testing.T) {
	c := newTestCollector(true)

	c.UpdateCacheSize(42)
	c.RecordCacheEviction()

	if got := testutil.ToFloat64(c.cache.entries.WithLabelValues(analysisCache)); got != 42 {
		t.Errorf("Expected 42 entries, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.evictions.WithLabelValues(analysisCache)); got != 1 {
		t.Errorf("Expected 1 eviction, got %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := newTestCollector(false)

	c.RecordAnalysis(moderation.ActionReject, time.Millisecond, nil, false)
	c.RecordAudit("stored")
	c.RecordHTTPRequest("/v1/comments/analyze", 200, time.Millisecond)

	if got := testutil.CollectAndCount(c.moderation.analysesTotal); got != 0 {
		t.Errorf("Expected no series when disabled, got %d", got)
	}
	if got := testutil.CollectAndCount(c.audit.recordsTotal); got != 0 {
		t.Errorf("Expected no audit series when disabled, got %d", got)
	}
	if c.Enabled() {
		t.Error("Expected Enabled() false")
	}
}

func TestCollector_HTTPRouteCardinality(t *testing.T) {
	c := newTestCollector(true)
	c.routes = NewCardinalityLimiter(2)

	c.RecordHTTPRequest("/a", 200, time.Millisecond)
	c.RecordHTTPRequest("/b", 200, time.Millisecond)
	c.RecordHTTPRequest("/c", 404, time.Millisecond)

	if got := testutil.ToFloat64(c.http.requestsTotal.WithLabelValues("other", "404")); got != 1 {
		t.Errorf("Expected overflow route folded into other, got %v", got)
	}
	if got := testutil.ToFloat64(c.http.requestsTotal.WithLabelValues("/a", "200")); got != 1 {
		t.Errorf("Expected /a counted, got %v", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("Expected first two values to be allowed")
	}
	if cl.Allow("c") {
		t.Error("Expected third value to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("Expected known value to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Expected count 2, got %d", cl.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(true)
	c.RecordAnalysis(moderation.ActionReject, time.Millisecond, nil, false)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `vesta_moderation_analyses_total{action="reject"} 1`) {
		t.Errorf("Expected analyses counter in scrape output, got:\n%s", body)
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Expected default namespace, got %q", cfg.Namespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("Expected default buckets")
	}

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "go_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected Go runtime collector on default registry")
	}
}
