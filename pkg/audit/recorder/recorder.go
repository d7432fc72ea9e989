package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/telemetry/logging"
)

// Statuses reported to Metrics.RecordAudit.
const (
	StatusEnqueued = "enqueued"
	StatusDropped  = "dropped"
	StatusStored   = "stored"
	StatusFailed   = "failed"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled turns recording on. When false Record is a no-op.
	Enabled bool

	// AsyncBuffer is the capacity of the write queue.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxFieldLength truncates flag reasons.
	// Default: 500
	MaxFieldLength int

	// HashKey switches the content fingerprint to HMAC-SHA256 when set.
	HashKey string
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    1000,
		WriteTimeout:   5 * time.Second,
		MaxFieldLength: 500,
	}
}

// Metrics receives recorder outcomes.
type Metrics interface {
	RecordAudit(status string)
}

// Stats is a snapshot of recorder counters.
type Stats struct {
	Enqueued int64
	Dropped  int64
	Stored   int64
	Failed   int64
	Pending  int
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// Recorder turns analysis results into audit records and writes them to
// storage from a background worker. Record never blocks: when the queue is
// full the record is dropped. It implements engine.AuditSink.
type Recorder struct {
	storage audit.Storage
	config  *Config
	hasher  *Hasher
	metrics Metrics
	logger  *slog.Logger

	queue chan *audit.Record
	done  chan struct{}
	wg    sync.WaitGroup

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	enqueued atomic.Int64
	dropped  atomic.Int64
	stored   atomic.Int64
	failed   atomic.Int64
}

// NewRecorder starts a recorder writing to storage.
func NewRecorder(storage audit.Storage, config *Config, opts ...Option) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		hasher:  NewHasher(config.HashKey),
		logger:  slog.Default().With("component", "audit.recorder"),
		queue:   make(chan *audit.Record, config.AsyncBuffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"enabled", config.Enabled,
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"keyed_hash", config.HashKey != "",
	)
	return r
}

// Record builds an audit record for result and enqueues it.
func (r *Recorder) Record(ctx context.Context, text string, result *moderation.AnalysisResult) error {
	if !r.config.Enabled || result == nil {
		return nil
	}

	rec := r.BuildRecord(ctx, text, result)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return audit.NewRecorderError(rec.ID, audit.ErrRecorderClosed)
	}

	select {
	case r.queue <- rec:
		r.enqueued.Add(1)
		r.observe(StatusEnqueued)
		return nil
	default:
		r.dropped.Add(1)
		r.observe(StatusDropped)
		r.logger.Warn("audit queue full, dropping record",
			"record_id", rec.ID,
			"capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(rec.ID, audit.ErrQueueFull)
	}
}

// BuildRecord converts result into an audit record. The text is only
// hashed and measured.
func (r *Recorder) BuildRecord(ctx context.Context, text string, result *moderation.AnalysisResult) *audit.Record {
	flags := make([]audit.FlagRecord, 0, len(result.Toxicity.Flags))
	for _, f := range result.Toxicity.Flags {
		flags = append(flags, audit.FlagRecord{
			Kind:       string(f.Kind),
			Confidence: f.Confidence,
			Reason:     TruncateString(f.Reason, r.config.MaxFieldLength),
		})
	}

	topics := append([]string{}, result.Content.Topics...)

	return &audit.Record{
		ID:                  uuid.New().String(),
		ContentHash:         r.hasher.SumString(text),
		RequestID:           logging.GetRequestID(ctx),
		ContentLength:       utf8.RuneCountInString(text),
		Language:            result.Content.Language,
		Topics:              topics,
		MentionCount:        len(result.Content.Mentions),
		SentimentScore:      result.Sentiment.Score,
		SentimentConfidence: result.Sentiment.Confidence,
		ToxicityScore:       result.Toxicity.Score,
		ToxicityConfidence:  result.Toxicity.Confidence,
		Confidence:          result.Confidence,
		Flags:               flags,
		RecommendedAction:   string(result.RecommendedAction),
		Degraded:            result.Degraded,
		AnalyzedAt:          result.AnalyzedAt,
	}
}

// Hasher returns the fingerprint function used for records, so callers can
// look up a known comment with Query.ContentHash.
func (r *Recorder) Hasher() *Hasher {
	return r.hasher
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Enqueued: r.enqueued.Load(),
		Dropped:  r.dropped.Load(),
		Stored:   r.stored.Load(),
		Failed:   r.failed.Load(),
		Pending:  len(r.queue),
	}
}

// Close stops accepting records, drains the queue and waits for the worker.
// It is safe to call more than once.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down audit recorder", "pending", len(r.queue))

		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()

		st := r.Stats()
		r.logger.Info("audit recorder stopped",
			"stored", st.Stored,
			"dropped", st.Dropped,
			"failed", st.Failed,
		)
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
		case <-r.done:
			for {
				select {
				case rec := <-r.queue:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, rec); err != nil {
		r.failed.Add(1)
		r.observe(StatusFailed)
		r.logger.Error("failed to store audit record",
			"record_id", rec.ID,
			"error", err,
		)
		return
	}
	r.stored.Add(1)
	r.observe(StatusStored)

	elapsed := time.Since(start)
	r.logger.Debug("audit record stored",
		"record_id", rec.ID,
		"action", rec.RecommendedAction,
		"duration_ms", elapsed.Milliseconds(),
	)
	if elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", rec.ID,
			"duration_ms", elapsed.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) observe(status string) {
	if r.metrics != nil {
		r.metrics.RecordAudit(status)
	}
}
