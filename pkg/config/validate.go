package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/vesta/pkg/moderation/content"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateModeration(&cfg.Moderation)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, format string, args ...any) {
	*f = append(*f, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs fieldErrors

	if cfg.ListenAddress == "" {
		errs.add("server.listen_address", "listen address is required")
	}
	if cfg.ReadTimeout < 0 {
		errs.add("server.read_timeout", "read timeout must be positive")
	}
	if cfg.WriteTimeout < 0 {
		errs.add("server.write_timeout", "write timeout must be positive")
	}
	if cfg.IdleTimeout < 0 {
		errs.add("server.idle_timeout", "idle timeout must be positive")
	}
	if cfg.ShutdownTimeout < 0 {
		errs.add("server.shutdown_timeout", "shutdown timeout must be positive")
	}
	if cfg.MaxHeaderBytes < 0 {
		errs.add("server.max_header_bytes", "max header bytes must be non-negative")
	}
	if cfg.MaxBodyBytes < 0 {
		errs.add("server.max_body_bytes", "max body bytes must be non-negative")
	}
	if cfg.MaxCommentLength < 1 {
		errs.add("server.max_comment_length", "max comment length must be at least 1")
	}
	if cfg.MaxBatchSize < 1 {
		errs.add("server.max_batch_size", "max batch size must be at least 1")
	}

	return errs
}

func validateModeration(cfg *ModerationConfig) []FieldError {
	var errs fieldErrors

	if cfg.FailureMode != "open" && cfg.FailureMode != "closed" {
		errs.add("moderation.failure_mode", "invalid failure mode %q: must be 'open' or 'closed'", cfg.FailureMode)
	}
	if cfg.BatchWorkers < 0 {
		errs.add("moderation.batch_workers", "batch workers must be non-negative")
	}
	if cfg.CacheSize < 0 {
		errs.add("moderation.cache_size", "cache size must be non-negative")
	}

	lang := cfg.Language
	if lang.Detector != string(content.LanguageStopwords) && lang.Detector != string(content.LanguageHybrid) {
		errs.add("moderation.language.detector", "invalid detector %q: must be 'stopwords' or 'hybrid'", lang.Detector)
	}
	if !content.IsSupportedLanguage(lang.Fallback) {
		errs.add("moderation.language.fallback", "unsupported language %q: must be one of %s",
			lang.Fallback, strings.Join(content.SupportedLanguages(), ", "))
	}
	if lang.MinConfidence < 0 || lang.MinConfidence > 1 {
		errs.add("moderation.language.min_confidence", "min confidence must be between 0.0 and 1.0")
	}

	for i, term := range cfg.Terms.Severe {
		if strings.TrimSpace(term) == "" {
			errs.add(fmt.Sprintf("moderation.terms.severe[%d]", i), "term must not be empty")
		}
	}
	for i, term := range cfg.Terms.Moderate {
		if strings.TrimSpace(term) == "" {
			errs.add(fmt.Sprintf("moderation.terms.moderate[%d]", i), "term must not be empty")
		}
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs fieldErrors

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs.add("audit.sqlite.path", "SQLite path is required when backend is 'sqlite'")
		}
		if cfg.SQLite.Driver != "sqlite3" && cfg.SQLite.Driver != "sqlite" {
			errs.add("audit.sqlite.driver", "invalid driver %q: must be 'sqlite3' (cgo) or 'sqlite' (pure Go)", cfg.SQLite.Driver)
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs.add("audit.sqlite.max_open_conns", "max open connections must be at least 1")
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs.add("audit.sqlite.busy_timeout", "busy timeout must be non-negative")
		}
	default:
		errs.add("audit.backend", "invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend)
	}

	if cfg.Recorder.AsyncBuffer < 1 {
		errs.add("audit.recorder.async_buffer", "async buffer must be at least 1")
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs.add("audit.recorder.write_timeout", "write timeout must be non-negative")
	}
	if cfg.Recorder.MaxFieldLength < 0 {
		errs.add("audit.recorder.max_field_length", "max field length must be non-negative")
	}

	if cfg.Retention.Days < 0 {
		errs.add("audit.retention.days", "retention days must be non-negative")
	}
	if cfg.Retention.Days > 3650 {
		errs.add("audit.retention.days", "retention days exceeds reasonable limit (3650 days / 10 years)")
	}
	if cfg.Retention.MaxRecords < 0 {
		errs.add("audit.retention.max_records", "max records must be non-negative")
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs.add("audit.retention.prune_schedule", "invalid cron expression %q: %v", cfg.Retention.PruneSchedule, err)
		}
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		errs.add("audit.retention.archive_path", "archive path is required when archive_before_delete is set")
	}

	if cfg.Query.DefaultLimit < 1 {
		errs.add("audit.query.default_limit", "default limit must be at least 1")
	}
	if cfg.Query.MaxLimit < cfg.Query.DefaultLimit {
		errs.add("audit.query.max_limit", "max limit (%d) must be >= default limit (%d)", cfg.Query.MaxLimit, cfg.Query.DefaultLimit)
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs fieldErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs.add("telemetry.logging.level", "invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs.add("telemetry.logging.format", "invalid log format %q: must be 'json' or 'text'", cfg.Logging.Format)
	}
	for i, p := range cfg.Logging.RedactPatterns {
		field := fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i)
		if p.Pattern == "" {
			errs.add(field+".pattern", "pattern is required")
			continue
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs.add(field+".pattern", "invalid regular expression: %v", err)
		}
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs.add("telemetry.metrics.path", "metrics path must start with '/'")
		}
		for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
			if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
				errs.add("telemetry.metrics.duration_buckets", "buckets must be strictly increasing")
				break
			}
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs.add("telemetry.tracing.sampler", "invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler)
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs.add("telemetry.tracing.sample_ratio", "sample ratio must be between 0.0 and 1.0")
		}
		if cfg.Tracing.Endpoint == "" {
			errs.add("telemetry.tracing.endpoint", "endpoint is required when tracing is enabled")
		}
	}

	if cfg.Health.Enabled {
		for field, path := range map[string]string{
			"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
			"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
			"telemetry.health.version_path":   cfg.Health.VersionPath,
		} {
			if !strings.HasPrefix(path, "/") {
				errs.add(field, "path must start with '/'")
			}
		}
	}

	return errs
}
