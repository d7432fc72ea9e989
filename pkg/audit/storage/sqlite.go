package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/vesta/pkg/audit"
)

// SQL driver names. DriverCGO is mattn/go-sqlite3, DriverPure is
// modernc.org/sqlite for CGO_ENABLED=0 builds.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the SQL driver: DriverCGO or DriverPure.
	// Default: DriverCGO
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		Driver:       DriverCGO,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// dsn builds a connection string carrying the pragmas, so every pooled
// connection gets them. The two drivers spell pragmas differently.
func (c *SQLiteConfig) dsn() string {
	v := url.Values{}
	ms := c.BusyTimeout.Milliseconds()
	switch c.Driver {
	case DriverPure:
		v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
		if c.WALMode {
			v.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		v.Set("_busy_timeout", fmt.Sprint(ms))
		if c.WALMode {
			v.Set("_journal_mode", "WAL")
		}
	}
	return "file:" + c.Path + "?" + v.Encode()
}

// SQLiteStorage implements audit.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	defaults := DefaultSQLiteConfig()
	if config == nil {
		config = defaults
	}
	if config.Driver == "" {
		config.Driver = defaults.Driver
	}
	if config.Driver != DriverCGO && config.Driver != DriverPure {
		return nil, audit.NewStorageError("sqlite", "open",
			fmt.Errorf("unknown driver %q (want %q or %q)", config.Driver, DriverCGO, DriverPure))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = defaults.MaxOpenConns
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = defaults.MaxIdleConns
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = defaults.BusyTimeout
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open(config.Driver, config.dsn())
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store inserts record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	topics, err := json.Marshal(nonNilTopics(record.Topics))
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	flags, err := json.Marshal(nonNilFlags(record.Flags))
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	_, err = s.db.ExecContext(ctx, insertRecord,
		record.ID, record.ContentHash, record.RequestID,
		record.ContentLength, record.Language, string(topics), record.MentionCount,
		record.SentimentScore, record.SentimentConfidence, record.ToxicityScore, record.ToxicityConfidence, record.Confidence,
		string(flags), flagKinds(record.Flags), record.RecommendedAction, record.Degraded,
		record.AnalyzedAt.UnixNano(),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching records.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	sqlQuery, args, err := s.selectQuery(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// QueryStream streams matching records row by row.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	sqlQuery, args, err := s.selectQuery(query)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *audit.Record, streamBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				errCh <- audit.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- rec:
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhereClause(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhereClause(query)

	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_records"+where, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return audit.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

var sortColumns = map[string]string{
	audit.SortByAnalyzedAt:     "analyzed_at",
	audit.SortByToxicityScore:  "toxicity_score",
	audit.SortBySentimentScore: "sentiment_score",
	audit.SortByConfidence:     "confidence",
}

func (s *SQLiteStorage) selectQuery(query *audit.Query) (string, []any, error) {
	column, ok := sortColumns[sortField(query)]
	if !ok {
		return "", nil, audit.NewQueryError("sort_by", fmt.Errorf("unsupported sort field %q", query.SortBy))
	}
	order := "ASC"
	if sortDescending(query) {
		order = "DESC"
	}

	where, args := buildWhereClause(query)

	var b strings.Builder
	b.WriteString("SELECT " + recordColumns + " FROM audit_records")
	b.WriteString(where)
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", column, order, order)

	if query != nil && (query.Limit > 0 || query.Offset > 0) {
		limit := -1
		if query.Limit > 0 {
			limit = query.Limit
		}
		fmt.Fprintf(&b, " LIMIT %d", limit)
		if query.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", query.Offset)
		}
	}
	return b.String(), args, nil
}

// buildWhereClause returns " WHERE ..." (or "") and its arguments.
func buildWhereClause(query *audit.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}

	if query.StartTime != nil {
		add("analyzed_at >= ?", query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		add("analyzed_at <= ?", query.EndTime.UnixNano())
	}
	if query.Action != "" {
		add("recommended_action = ?", query.Action)
	}
	if query.Language != "" {
		add("language = ?", query.Language)
	}
	if query.FlagKind != "" {
		add("flag_kinds LIKE ?", "%|"+query.FlagKind+"|%")
	}
	if query.Topic != "" {
		topic, _ := json.Marshal(query.Topic)
		add("topics LIKE ?", "%"+string(topic)+"%")
	}
	if query.ContentHash != "" {
		add("content_hash = ?", query.ContentHash)
	}
	if query.RequestID != "" {
		add("request_id = ?", query.RequestID)
	}
	if query.MinToxicity != nil {
		add("toxicity_score >= ?", *query.MinToxicity)
	}
	if query.MaxToxicity != nil {
		add("toxicity_score <= ?", *query.MaxToxicity)
	}
	if query.Degraded != nil {
		add("degraded = ?", *query.Degraded)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var rec audit.Record
	var topics, flags, kinds string
	var analyzedAt int64

	err := rows.Scan(
		&rec.ID, &rec.ContentHash, &rec.RequestID,
		&rec.ContentLength, &rec.Language, &topics, &rec.MentionCount,
		&rec.SentimentScore, &rec.SentimentConfidence, &rec.ToxicityScore, &rec.ToxicityConfidence, &rec.Confidence,
		&flags, &kinds, &rec.RecommendedAction, &rec.Degraded,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(topics), &rec.Topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &rec.Flags); err != nil {
		return nil, fmt.Errorf("decode flags: %w", err)
	}
	rec.AnalyzedAt = time.Unix(0, analyzedAt).UTC()

	return &rec, nil
}

func flagKinds(flags []audit.FlagRecord) string {
	if len(flags) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('|')
	for _, f := range flags {
		b.WriteString(f.Kind)
		b.WriteByte('|')
	}
	return b.String()
}

func nonNilTopics(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func nonNilFlags(f []audit.FlagRecord) []audit.FlagRecord {
	if f == nil {
		return []audit.FlagRecord{}
	}
	return f
}
