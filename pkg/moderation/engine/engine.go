package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/content"
	"mercator-hq/vesta/pkg/moderation/sentiment"
	"mercator-hq/vesta/pkg/moderation/toxicity"
	"mercator-hq/vesta/pkg/telemetry/tracing"
)

// Failure stages reported to Metrics.RecordFailure.
const (
	StageSentiment = "sentiment"
	StageToxicity  = "toxicity"
	StageContent   = "content"
	StageAudit     = "audit"
)

const (
	negativeSentimentReason = "held for review: strongly negative sentiment"
	degradedReason          = "held for review: automated moderation unavailable"
	genericReason           = "held for review"
)

// Engine runs the analyzers, applies the decision policy and hands each
// result to the audit sink. It is safe for concurrent use.
type Engine struct {
	sentiment SentimentAnalyzer
	toxicity  ToxicityDetector
	content   ContentAnalyzer

	sink    AuditSink
	metrics Metrics
	tracer  Tracer
	logger  *slog.Logger
	now     func() time.Time

	failureMode atomic.Value // FailureMode
	fallback    string
	workers     int
	cache       *resultCache
}

// New builds an Engine. Analyzers not supplied through options are built
// from the default lexicon and catalogs.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.FailureMode == "" {
		cfg.FailureMode = FailOpen
	}
	if _, err := ParseFailureMode(string(cfg.FailureMode)); err != nil {
		return nil, err
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = DefaultConfig().BatchWorkers
	}

	e := &Engine{
		metrics:  noopMetrics{},
		tracer:   noop.NewTracerProvider().Tracer("vesta"),
		logger:   slog.Default().With("component", "moderation.engine"),
		now:      time.Now,
		fallback: cfg.Content.Fallback,
		workers:  cfg.BatchWorkers,
	}
	e.failureMode.Store(cfg.FailureMode)

	for _, opt := range opts {
		opt(e)
	}

	if e.sentiment == nil {
		a, err := sentiment.NewAnalyzer(sentiment.DefaultLexicon())
		if err != nil {
			return nil, fmt.Errorf("failed to build sentiment analyzer: %w", err)
		}
		e.sentiment = a
	}
	if e.toxicity == nil {
		catalog := toxicity.DefaultCatalog().WithExtraTerms(cfg.ExtraSevereTerms, cfg.ExtraModerateTerms)
		d, err := toxicity.NewDetector(catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to build toxicity detector: %w", err)
		}
		e.toxicity = d
	}
	if e.content == nil {
		a, err := content.NewAnalyzer(cfg.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to build content analyzer: %w", err)
		}
		e.content = a
	}
	if e.fallback == "" {
		e.fallback = content.DefaultConfig().Fallback
	}

	var onEvict func()
	if cm, ok := e.metrics.(CacheMetrics); ok {
		onEvict = cm.RecordCacheEviction
	}
	cache, err := newResultCache(cfg.CacheSize, onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	e.cache = cache

	return e, nil
}

// FailureMode returns the current failure policy.
func (e *Engine) FailureMode() FailureMode {
	return e.failureMode.Load().(FailureMode)
}

// SetFailureMode changes the failure policy for subsequent analyses.
func (e *Engine) SetFailureMode(m FailureMode) error {
	if _, err := ParseFailureMode(string(m)); err != nil {
		return err
	}
	if old := e.FailureMode(); old != m {
		e.failureMode.Store(m)
		e.logger.Info("failure mode changed", "from", old, "to", m)
	}
	return nil
}

// AnalyzeComment analyzes a single comment. It never fails: analyzer panics
// produce the failure-mode default and audit problems are only logged.
func (e *Engine) AnalyzeComment(ctx context.Context, text string) *moderation.AnalysisResult {
	ctx, span := e.tracer.Start(ctx, "moderation.analyze",
		trace.WithAttributes(attribute.Int(tracing.AttrCommentLength, utf8.RuneCountInString(text))))
	defer span.End()
	return e.analyzeComment(ctx, span, text)
}

// AnalyzeComments analyzes texts concurrently. Results are in input order.
func (e *Engine) AnalyzeComments(ctx context.Context, texts []string) []*moderation.AnalysisResult {
	ctx, span := e.tracer.Start(ctx, "moderation.analyze_batch",
		trace.WithAttributes(attribute.Int(tracing.AttrBatchSize, len(texts))))
	defer span.End()

	e.metrics.RecordBatch(len(texts))

	results := make([]*moderation.AnalysisResult, len(texts))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, text := range texts {
		g.Go(func() error {
			results[i] = e.AnalyzeComment(ctx, text)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ModerateRealtime analyzes text and reduces the result to a pass/fail
// decision for the comment submission path.
func (e *Engine) ModerateRealtime(ctx context.Context, text string) *moderation.Decision {
	ctx, span := e.tracer.Start(ctx, "moderation.moderate_realtime")
	defer span.End()

	d := DecisionFor(e.analyzeComment(ctx, span, text))
	span.SetAttributes(attribute.Bool("moderation.approved", d.Approved))
	return d
}

// DecisionFor reduces an analysis to the decision ModerateRealtime would
// return for it.
func DecisionFor(result *moderation.AnalysisResult) *moderation.Decision {
	d := &moderation.Decision{
		Approved: result.RecommendedAction == moderation.ActionApprove,
		Analysis: result,
	}
	if !d.Approved {
		d.Reason = decisionReason(result)
	}
	return d
}

func decisionReason(r *moderation.AnalysisResult) string {
	if reason := moderation.Reasons(r.Toxicity.Flags); reason != "" {
		return reason
	}
	switch {
	case r.Degraded:
		return degradedReason
	case r.Sentiment.Score < moderation.NegativeReviewThreshold:
		return negativeSentimentReason
	}
	return genericReason
}

func (e *Engine) analyzeComment(ctx context.Context, span trace.Span, text string) *moderation.AnalysisResult {
	start := e.now()

	var result *moderation.AnalysisResult
	cached := false
	if hit, ok := e.cache.get(text); ok {
		r := *hit
		r.AnalyzedAt = start
		result, cached = &r, true
	} else {
		result = e.analyze(text, start)
		if !result.Degraded {
			e.cache.add(text, result)
			if cm, ok := e.metrics.(CacheMetrics); ok && e.cache != nil {
				cm.UpdateCacheSize(e.cache.len())
			}
		}
	}

	tracing.SetAnalysisAttributes(span, result, cached)
	if result.Degraded {
		span.SetStatus(codes.Error, "analyzer failure")
	}

	e.metrics.RecordAnalysis(result.RecommendedAction, e.now().Sub(start), result.Toxicity.Flags, cached)
	e.audit(ctx, text, result)

	return result
}

// analyze runs the three analyzers concurrently and aggregates them.
func (e *Engine) analyze(text string, at time.Time) *moderation.AnalysisResult {
	var (
		wg   sync.WaitGroup
		sent moderation.SentimentResult
		tox  moderation.ToxicityResult
		meta moderation.ContentMetadata
		errs [3]*analyzerFailure
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[0], StageSentiment)
		sent = e.sentiment.Analyze(text)
	}()
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[1], StageToxicity)
		tox = e.toxicity.Detect(text)
	}()
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[2], StageContent)
		meta = e.content.Analyze(text)
	}()
	wg.Wait()

	failed := false
	for _, f := range errs {
		if f == nil {
			continue
		}
		failed = true
		e.metrics.RecordFailure(f.stage)
		e.logger.Error("analyzer failed, returning default result",
			"stage", f.stage,
			"error", f,
			"failure_mode", e.FailureMode(),
			"content_length", len(text),
		)
	}
	if failed {
		return e.defaultResult(at)
	}

	if tox.Flags == nil {
		tox.Flags = []moderation.Flag{}
	}
	if meta.Topics == nil {
		meta.Topics = []string{}
	}
	if meta.Mentions == nil {
		meta.Mentions = []string{}
	}

	sent.Score = moderation.Clamp(sent.Score, -1, 1)
	sent.Confidence = moderation.Clamp(sent.Confidence, 0, 1)
	tox.Score = moderation.Clamp(tox.Score, 0, 1)
	tox.Confidence = moderation.Clamp(tox.Confidence, 0, 1)

	return &moderation.AnalysisResult{
		Sentiment:         sent,
		Toxicity:          tox,
		Content:           meta,
		Confidence:        max(sent.Confidence, tox.Confidence),
		RecommendedAction: moderation.Decide(tox.Score, sent.Score),
		AnalyzedAt:        at,
	}
}

// defaultResult is returned when an analyzer fails: zero scores, no flags,
// and approve or review depending on the failure mode.
func (e *Engine) defaultResult(at time.Time) *moderation.AnalysisResult {
	action := moderation.ActionApprove
	if e.FailureMode() == FailClosed {
		action = moderation.ActionReview
	}
	return &moderation.AnalysisResult{
		Toxicity: moderation.ToxicityResult{Flags: []moderation.Flag{}},
		Content: moderation.ContentMetadata{
			Topics:   []string{},
			Mentions: []string{},
			Language: e.fallback,
		},
		RecommendedAction: action,
		AnalyzedAt:        at,
		Degraded:          true,
	}
}

func (e *Engine) audit(ctx context.Context, text string, result *moderation.AnalysisResult) {
	if e.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.metrics.RecordFailure(StageAudit)
			e.logger.Warn("audit sink panicked", "panic", r)
		}
	}()
	if err := e.sink.Record(ctx, text, result); err != nil {
		e.metrics.RecordFailure(StageAudit)
		e.logger.Warn("audit record dropped", "error", err)
	}
}

type analyzerFailure struct {
	stage string
	value any
}

func (f *analyzerFailure) Error() string {
	return fmt.Sprintf("%s analyzer panicked: %v", f.stage, f.value)
}

func recoverInto(dst **analyzerFailure, stage string) {
	if r := recover(); r != nil {
		*dst = &analyzerFailure{stage: stage, value: r}
	}
}
