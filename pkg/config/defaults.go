package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress    = "127.0.0.1:8080"
	DefaultReadTimeout      = 15 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 120 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultMaxHeaderBytes   = 1 << 20
	DefaultMaxBodyBytes     = int64(4 << 20)
	DefaultMaxCommentLength = 10000
	DefaultMaxBatchSize     = 100

	// Moderation defaults
	DefaultFailureMode           = "open"
	DefaultLanguageDetector      = "stopwords"
	DefaultLanguageFallback      = "en"
	DefaultLanguageMinConfidence = 0.5

	// Audit defaults
	DefaultAuditEnabled              = true
	DefaultAuditBackend              = "sqlite"
	DefaultAuditSQLitePath           = "data/audit.db"
	DefaultAuditSQLiteDriver         = "sqlite3"
	DefaultAuditSQLiteMaxOpenConns   = 10
	DefaultAuditSQLiteMaxIdleConns   = 5
	DefaultAuditSQLiteWALMode        = true
	DefaultAuditSQLiteBusyTimeout    = 5 * time.Second
	DefaultAuditRecorderAsyncBuffer  = 1000
	DefaultAuditRecorderWriteTimeout = 5 * time.Second
	DefaultAuditRecorderMaxFieldLen  = 500
	DefaultAuditRetentionDays        = 90
	DefaultAuditRetentionSchedule    = "0 3 * * *"
	DefaultAuditRetentionArchivePath = "data/archives/"
	DefaultAuditQueryDefaultLimit    = 100
	DefaultAuditQueryMaxLimit        = 10000
	DefaultAuditQueryTimeout         = 30 * time.Second
	DefaultAuditExportJSONPretty     = true
	DefaultAuditExportCSVHeader      = true

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedactPII    = true
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "vesta"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSampleRatio  = 0.1
	DefaultTracingEndpoint     = "localhost:4317"
	DefaultTracingServiceName  = "vesta"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthVersionPath   = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// DefaultDurationBuckets are histogram buckets in seconds. Analyses take
// well under a millisecond, so the low end is dense.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Default returns a configuration with every field at its default. YAML is
// decoded on top of it, so omitted booleans keep their defaults.
func Default() *Config {
	cfg := &Config{
		Audit: AuditConfig{
			Enabled: DefaultAuditEnabled,
			SQLite:  SQLiteConfig{WALMode: DefaultAuditSQLiteWALMode},
			Export: ExportConfig{
				JSONPretty:       DefaultAuditExportJSONPretty,
				CSVIncludeHeader: DefaultAuditExportCSVHeader,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultLoggingRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{OTLP: OTLPConfig{Insecure: DefaultOTLPInsecure}},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults. Booleans are left
// alone; use Default for a fully populated configuration. It is idempotent.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyModerationDefaults(&cfg.Moderation)
	applyAuditDefaults(&cfg.Audit)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.MaxCommentLength == 0 {
		s.MaxCommentLength = DefaultMaxCommentLength
	}
	if s.MaxBatchSize == 0 {
		s.MaxBatchSize = DefaultMaxBatchSize
	}
}

func applyModerationDefaults(m *ModerationConfig) {
	if m.FailureMode == "" {
		m.FailureMode = DefaultFailureMode
	}
	if m.Language.Detector == "" {
		m.Language.Detector = DefaultLanguageDetector
	}
	if m.Language.Fallback == "" {
		m.Language.Fallback = DefaultLanguageFallback
	}
	if m.Language.MinConfidence == 0 {
		m.Language.MinConfidence = DefaultLanguageMinConfidence
	}
}

func applyAuditDefaults(a *AuditConfig) {
	if a.Backend == "" {
		a.Backend = DefaultAuditBackend
	}

	if a.SQLite.Path == "" {
		a.SQLite.Path = DefaultAuditSQLitePath
	}
	if a.SQLite.Driver == "" {
		a.SQLite.Driver = DefaultAuditSQLiteDriver
	}
	if a.SQLite.MaxOpenConns == 0 {
		a.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if a.SQLite.MaxIdleConns == 0 {
		a.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if a.SQLite.BusyTimeout == 0 {
		a.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}

	if a.Recorder.AsyncBuffer == 0 {
		a.Recorder.AsyncBuffer = DefaultAuditRecorderAsyncBuffer
	}
	if a.Recorder.WriteTimeout == 0 {
		a.Recorder.WriteTimeout = DefaultAuditRecorderWriteTimeout
	}
	if a.Recorder.MaxFieldLength == 0 {
		a.Recorder.MaxFieldLength = DefaultAuditRecorderMaxFieldLen
	}

	if a.Retention.Days == 0 {
		a.Retention.Days = DefaultAuditRetentionDays
	}
	if a.Retention.PruneSchedule == "" {
		a.Retention.PruneSchedule = DefaultAuditRetentionSchedule
	}
	if a.Retention.ArchivePath == "" {
		a.Retention.ArchivePath = DefaultAuditRetentionArchivePath
	}

	if a.Query.DefaultLimit == 0 {
		a.Query.DefaultLimit = DefaultAuditQueryDefaultLimit
	}
	if a.Query.MaxLimit == 0 {
		a.Query.MaxLimit = DefaultAuditQueryMaxLimit
	}
	if a.Query.Timeout == 0 {
		a.Query.Timeout = DefaultAuditQueryTimeout
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if t.Health.VersionPath == "" {
		t.Health.VersionPath = DefaultHealthVersionPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
