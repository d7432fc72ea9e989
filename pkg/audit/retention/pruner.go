package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is how long records are kept. 0 keeps them forever.
	RetentionDays int

	// MaxRecords caps the number of stored records. 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a standard cron expression. Empty disables the
	// scheduler; Prune can still be called directly.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete writes pruned records to a JSON file in
	// ArchivePath before deleting them.
	ArchiveBeforeDelete bool
	ArchivePath         string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		ArchivePath:   "data/archives/",
	}
}

// Pruner enforces retention limits on audit records.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	metrics   Metrics
	now       func() time.Time
}

// Metrics receives the outcome of each prune run.
type Metrics interface {
	RecordPrune(deleted int64, err error)
}

// Option customizes a Pruner.
type Option func(*Pruner)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Pruner) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pruner) { p.logger = l }
}

// NewPruner creates a pruner.
func NewPruner(storage audit.Storage, config *Config, opts ...Option) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than RetentionDays, then the oldest records
// beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	total, err := p.prune(ctx)
	if p.metrics != nil {
		p.metrics.RecordPrune(total, err)
	}
	return total, err
}

func (p *Pruner) prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, p.retentionError(fmt.Errorf("prune by age: %w", err))
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, p.retentionError(fmt.Errorf("prune by count: %w", err))
		}
		total += deleted
	}

	if total == 0 {
		p.logger.Debug("no audit records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("audit pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) retentionError(err error) error {
	return audit.NewRetentionError(p.config.RetentionDays, int(p.config.MaxRecords), err)
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	query := &audit.Query{EndTime: &cutoff}

	if p.config.ArchiveBeforeDelete {
		records, err := p.storage.Query(ctx, &audit.Query{EndTime: &cutoff, SortOrder: "asc"})
		if err != nil {
			return 0, fmt.Errorf("query records to archive: %w", err)
		}
		if err := p.archive(ctx, "age", records); err != nil {
			return 0, err
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("pruned audit records by age",
			"deleted_count", deleted,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}

// pruneByCount removes the oldest records until at most MaxRecords remain.
// Records sharing the cutoff timestamp are removed together.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	excess := int(count - p.config.MaxRecords)
	oldest, err := p.storage.Query(ctx, &audit.Query{
		SortBy:    audit.SortByAnalyzedAt,
		SortOrder: "asc",
		Limit:     excess,
	})
	if err != nil {
		return 0, fmt.Errorf("query oldest records: %w", err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, "count", oldest); err != nil {
			return 0, err
		}
	}

	cutoff := oldest[len(oldest)-1].AnalyzedAt
	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, err
	}

	p.logger.Info("pruned audit records by count",
		"deleted_count", deleted,
		"previous_count", count,
		"max_records", p.config.MaxRecords,
	)
	return deleted, nil
}

func (p *Pruner) archive(ctx context.Context, reason string, records []*audit.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	name := fmt.Sprintf("audit-%s-%s.json", reason, p.now().UTC().Format("2006-01-02-150405.000"))
	path := filepath.Join(p.config.ArchivePath, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Export(ctx, records, f); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	p.logger.Info("audit records archived",
		"archive_file", path,
		"record_count", len(records),
	)
	return nil
}

// Start starts the cron scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the scheduler and waits for a running prune.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled run, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
