package audit

import (
	"context"
	"io"
	"time"
)

// Record is the privacy-preserving trace of one moderation analysis.
// It never carries the comment text or the mentioned handles. Records are
// write-once.
type Record struct {
	// Identity
	ID          string `json:"id"`           // UUID v4
	ContentHash string `json:"content_hash"` // SHA-256 of the comment, hex
	RequestID   string `json:"request_id"`   // From the HTTP layer, may be empty

	// Content shape
	ContentLength int      `json:"content_length"` // Length in runes
	Language      string   `json:"language"`       // ISO 639-1
	Topics        []string `json:"topics"`         // Matched topic tags
	MentionCount  int      `json:"mention_count"`  // Distinct @handles, not the handles themselves

	// Scores
	SentimentScore      float64 `json:"sentiment_score"`      // [-1, 1]
	SentimentConfidence float64 `json:"sentiment_confidence"` // [0, 1]
	ToxicityScore       float64 `json:"toxicity_score"`       // [0, 1]
	ToxicityConfidence  float64 `json:"toxicity_confidence"`  // [0, 1]
	Confidence          float64 `json:"confidence"`           // max of the two confidences

	// Decision
	Flags             []FlagRecord `json:"flags"`
	RecommendedAction string       `json:"recommended_action"` // approve, review, auto_hide, reject
	Degraded          bool         `json:"degraded"`           // analyzer failure default

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// FlagRecord is a moderation flag as persisted.
type FlagRecord struct {
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"` // truncated to the recorder's MaxFieldLength
}

// HasFlag reports whether the record carries a flag of the given kind.
func (r *Record) HasFlag(kind string) bool {
	for _, f := range r.Flags {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// HasTopic reports whether the record was tagged with topic.
func (r *Record) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Sort fields accepted by Query.SortBy.
const (
	SortByAnalyzedAt     = "analyzed_at"
	SortByToxicityScore  = "toxicity_score"
	SortBySentimentScore = "sentiment_score"
	SortByConfidence     = "confidence"
)

// Query selects audit records. Zero-valued fields do not filter.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	// Filters
	Action      string `json:"action,omitempty"`       // Recommended action
	Language    string `json:"language,omitempty"`     // ISO 639-1
	FlagKind    string `json:"flag_kind,omitempty"`    // Records carrying this flag kind
	Topic       string `json:"topic,omitempty"`        // Records tagged with this topic
	ContentHash string `json:"content_hash,omitempty"` // Exact hash, finds repeats of one comment
	RequestID   string `json:"request_id,omitempty"`

	// Thresholds
	MinToxicity *float64 `json:"min_toxicity,omitempty"`
	MaxToxicity *float64 `json:"max_toxicity,omitempty"`

	// Degraded restricts to records produced by an analyzer failure when true.
	Degraded *bool `json:"degraded,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // See SortBy* constants
	SortOrder string `json:"sort_order,omitempty"` // "asc" or "desc"
}

// Matches reports whether r satisfies the filters of q, ignoring
// pagination and sorting.
func (q *Query) Matches(r *Record) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.AnalyzedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.AnalyzedAt.After(*q.EndTime) {
		return false
	}
	if q.Action != "" && r.RecommendedAction != q.Action {
		return false
	}
	if q.Language != "" && r.Language != q.Language {
		return false
	}
	if q.FlagKind != "" && !r.HasFlag(q.FlagKind) {
		return false
	}
	if q.Topic != "" && !r.HasTopic(q.Topic) {
		return false
	}
	if q.ContentHash != "" && r.ContentHash != q.ContentHash {
		return false
	}
	if q.RequestID != "" && r.RequestID != q.RequestID {
		return false
	}
	if q.MinToxicity != nil && r.ToxicityScore < *q.MinToxicity {
		return false
	}
	if q.MaxToxicity != nil && r.ToxicityScore > *q.MaxToxicity {
		return false
	}
	if q.Degraded != nil && r.Degraded != *q.Degraded {
		return false
	}
	return true
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store appends a record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, or an empty slice.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream delivers matching records on a channel for large result
	// sets. Both returned channels are closed when the query finishes; the
	// error channel carries at most one error.
	//
	//	records, errs, err := store.QueryStream(ctx, q)
	//	if err != nil {
	//		return err
	//	}
	//	for rec := range records {
	//		// ...
	//	}
	//	if err := <-errs; err != nil {
	//		return err
	//	}
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes matching records and returns how many were removed.
	// Only retention enforcement deletes records.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes records in some file format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
