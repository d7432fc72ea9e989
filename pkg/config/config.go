package config

import "time"

// Config is the root configuration for Vesta.
type Config struct {
	// Server contains the HTTP API settings.
	Server ServerConfig `yaml:"server"`

	// Moderation contains engine settings: failure policy, batch fan-out,
	// caching, language detection and catalog extensions.
	Moderation ModerationConfig `yaml:"moderation"`

	// Audit contains the audit trail settings: storage backend, recorder,
	// retention, query limits and export format options.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits request body size.
	// Default: 4194304 (4MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MaxCommentLength is the longest comment accepted, in runes. Longer
	// comments are rejected with 413.
	// Default: 10000
	MaxCommentLength int `yaml:"max_comment_length"`

	// MaxBatchSize is the most comments accepted by the batch endpoint.
	// Default: 100
	MaxBatchSize int `yaml:"max_batch_size"`
}

// ModerationConfig contains configuration for the moderation engine.
type ModerationConfig struct {
	// FailureMode is "open" (approve on analyzer failure) or "closed"
	// (hold for review). Reloadable.
	// Default: "open"
	FailureMode string `yaml:"failure_mode"`

	// BatchWorkers bounds concurrent analyses in a batch. 0 uses GOMAXPROCS.
	// Default: 0
	BatchWorkers int `yaml:"batch_workers"`

	// CacheSize is the number of analysis results cached by text. 0
	// disables the cache.
	// Default: 0
	CacheSize int `yaml:"cache_size"`

	// Language contains language detection settings.
	Language LanguageConfig `yaml:"language"`

	// Terms extends the built-in toxicity catalog.
	Terms TermsConfig `yaml:"terms"`
}

// LanguageConfig contains language detection settings.
type LanguageConfig struct {
	// Detector is "stopwords" or "hybrid" (stopwords, then statistical
	// detection when no stopword matches).
	// Default: "stopwords"
	Detector string `yaml:"detector"`

	// Fallback is returned when detection finds nothing.
	// Default: "en"
	Fallback string `yaml:"fallback"`

	// MinConfidence is the minimum statistical confidence accepted in
	// hybrid mode.
	// Default: 0.5
	MinConfidence float64 `yaml:"min_confidence"`
}

// TermsConfig lists extra catalog terms.
type TermsConfig struct {
	// Severe terms raise a hate_speech flag.
	Severe []string `yaml:"severe"`

	// Moderate terms raise a toxicity flag.
	Moderate []string `yaml:"moderate"`
}

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	// Enabled controls whether analyses are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query limits.
	Query QueryConfig `yaml:"query"`

	// Export contains export formatting options.
	Export ExportConfig `yaml:"export"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// Driver is "sqlite3" (cgo) or "sqlite" (pure Go).
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains audit recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the write queue capacity. Records are dropped when it
	// is full.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxFieldLength truncates flag reasons.
	// Default: 500
	MaxFieldLength int `yaml:"max_field_length"`

	// HashKey makes content hashes HMAC-SHA256. Usually set through
	// VESTA_AUDIT_RECORDER_HASH_KEY.
	HashKey string `yaml:"hash_key"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is how long records are kept. 0 keeps them forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of stored records. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete writes pruned records to JSON first.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the archive directory.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the page size when none is given.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the largest page size allowed.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`

	// Timeout bounds query execution.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// ExportConfig contains export configuration.
type ExportConfig struct {
	// JSONPretty indents JSON exports.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader writes a header row in CSV exports.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Reloadable.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII scrubs emails, phone numbers, IPs, tokens and @handles from
	// log attributes.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns adds custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "vesta"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are the histogram buckets for analysis and request
	// durations, in seconds.
	// Default: [0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service.name resource attribute.
	// Default: "vesta"
	ServiceName string `yaml:"service_name"`

	// OTLP contains exporter options.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// Enabled registers the health endpoints.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
