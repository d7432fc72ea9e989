package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/content"
)

// SentimentAnalyzer scores polarity. Implementations must be pure.
type SentimentAnalyzer interface {
	Analyze(text string) moderation.SentimentResult
}

// ToxicityDetector scores abuse and spam. Implementations must be pure.
type ToxicityDetector interface {
	Detect(text string) moderation.ToxicityResult
}

// ContentAnalyzer extracts topics, mentions and language. Implementations
// must be pure.
type ContentAnalyzer interface {
	Analyze(text string) moderation.ContentMetadata
}

// AuditSink receives one record per analysis. Record must not block; an
// implementation that cannot accept the record returns an error and the
// engine drops it.
type AuditSink interface {
	Record(ctx context.Context, text string, result *moderation.AnalysisResult) error
}

// Metrics receives engine instrumentation.
type Metrics interface {
	RecordAnalysis(action moderation.Action, duration time.Duration, flags []moderation.Flag, cached bool)
	RecordFailure(stage string)
	RecordBatch(size int)
}

// CacheMetrics may be implemented by a Metrics to observe the result cache.
type CacheMetrics interface {
	RecordCacheEviction()
	UpdateCacheSize(size int)
}

// Tracer starts spans. *tracing.Tracer satisfies it.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// FailureMode decides what an analyzer failure turns into.
type FailureMode string

const (
	// FailOpen approves the comment when an analyzer fails.
	FailOpen FailureMode = "open"

	// FailClosed holds the comment for review when an analyzer fails.
	FailClosed FailureMode = "closed"
)

// ParseFailureMode converts s into a FailureMode.
func ParseFailureMode(s string) (FailureMode, error) {
	switch m := FailureMode(s); m {
	case FailOpen, FailClosed:
		return m, nil
	}
	return "", fmt.Errorf("unknown failure mode %q (expected %q or %q)", s, FailOpen, FailClosed)
}

// Config holds engine settings.
type Config struct {
	// FailureMode is the policy applied when an analyzer panics.
	// Default: "open"
	FailureMode FailureMode

	// BatchWorkers bounds concurrent analyses in AnalyzeComments.
	// Default: GOMAXPROCS
	BatchWorkers int

	// CacheSize is the number of results kept in the LRU cache. 0 disables it.
	CacheSize int

	// Content configures language detection and topics.
	Content content.Config

	// ExtraSevereTerms and ExtraModerateTerms extend the built-in catalog.
	ExtraSevereTerms   []string
	ExtraModerateTerms []string
}

// DefaultConfig returns fail-open settings with caching disabled.
func DefaultConfig() Config {
	return Config{
		FailureMode:  FailOpen,
		BatchWorkers: runtime.GOMAXPROCS(0),
		Content:      content.DefaultConfig(),
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSentiment replaces the default sentiment analyzer.
func WithSentiment(a SentimentAnalyzer) Option {
	return func(e *Engine) { e.sentiment = a }
}

// WithToxicity replaces the default toxicity detector.
func WithToxicity(d ToxicityDetector) Option {
	return func(e *Engine) { e.toxicity = d }
}

// WithContent replaces the default content analyzer.
func WithContent(a ContentAnalyzer) Option {
	return func(e *Engine) { e.content = a }
}

// WithAuditSink sets the destination for audit records.
func WithAuditSink(s AuditSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer sets the span source.
func WithTracer(t Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(moderation.Action, time.Duration, []moderation.Flag, bool) {}
func (noopMetrics) RecordFailure(string) {}
func (noopMetrics) RecordBatch(int) {}
