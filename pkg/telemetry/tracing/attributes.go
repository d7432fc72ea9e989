package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/vesta/pkg/moderation"
)

// Span attribute keys. Comment text and handles are never attached.
const (
	AttrRequestID = "vesta.request_id"

	AttrAction         = "moderation.action"
	AttrToxicityScore  = "moderation.toxicity_score"
	AttrSentimentScore = "moderation.sentiment_score"
	AttrConfidence     = "moderation.confidence"
	AttrFlagCount      = "moderation.flag_count"
	AttrFlagKinds      = "moderation.flag_kinds"
	AttrLanguage       = "moderation.language"
	AttrCached         = "moderation.cached"
	AttrDegraded       = "moderation.degraded"
	AttrCommentLength  = "moderation.comment_length"
	AttrBatchSize      = "moderation.batch_size"

	AttrAuditQueryLimit = "audit.query.limit"
	AttrAuditRecords    = "audit.records"

	AttrErrorMessage = "error.message"
)

// SetAnalysisAttributes records the outcome of one analysis on span.
func SetAnalysisAttributes(span trace.Span, result *moderation.AnalysisResult, cached bool) {
	if result == nil {
		return
	}

	kinds := make([]string, 0, len(result.Toxicity.Flags))
	for _, f := range result.Toxicity.Flags {
		kinds = append(kinds, string(f.Kind))
	}

	span.SetAttributes(
		attribute.String(AttrAction, string(result.RecommendedAction)),
		attribute.Float64(AttrToxicityScore, result.Toxicity.Score),
		attribute.Float64(AttrSentimentScore, result.Sentiment.Score),
		attribute.Float64(AttrConfidence, result.Confidence),
		attribute.Int(AttrFlagCount, len(result.Toxicity.Flags)),
		attribute.StringSlice(AttrFlagKinds, kinds),
		attribute.String(AttrLanguage, result.Content.Language),
		attribute.Bool(AttrCached, cached),
		attribute.Bool(AttrDegraded, result.Degraded),
	)
}

// SetRequestAttributes tags span with the request ID.
func SetRequestAttributes(span trace.Span, requestID string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
}

// AddEvent adds an event to span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
