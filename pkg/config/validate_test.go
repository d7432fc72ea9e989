package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Expected default config to validate, got: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"zero comment length", func(c *Config) { c.Server.MaxCommentLength = 0 }, "server.max_comment_length"},
		{"zero batch size", func(c *Config) { c.Server.MaxBatchSize = 0 }, "server.max_batch_size"},

		{"failure mode", func(c *Config) { c.Moderation.FailureMode = "ajar" }, "moderation.failure_mode"},
		{"negative workers", func(c *Config) { c.Moderation.BatchWorkers = -2 }, "moderation.batch_workers"},
		{"negative cache", func(c *Config) { c.Moderation.CacheSize = -1 }, "moderation.cache_size"},
		{"detector", func(c *Config) { c.Moderation.Language.Detector = "crystal-ball" }, "moderation.language.detector"},
		{"fallback", func(c *Config) { c.Moderation.Language.Fallback = "tlh" }, "moderation.language.fallback"},
		{"min confidence", func(c *Config) { c.Moderation.Language.MinConfidence = 1.5 }, "moderation.language.min_confidence"},
		{"blank term", func(c *Config) { c.Moderation.Terms.Severe = []string{"  "} }, "moderation.terms.severe[0]"},

		{"backend", func(c *Config) { c.Audit.Backend = "postgres" }, "audit.backend"},
		{"sqlite path", func(c *Config) { c.Audit.SQLite.Path = "" }, "audit.sqlite.path"},
		{"sqlite driver", func(c *Config) { c.Audit.SQLite.Driver = "mysql" }, "audit.sqlite.driver"},
		{"async buffer", func(c *Config) { c.Audit.Recorder.AsyncBuffer = 0 }, "audit.recorder.async_buffer"},
		{"retention days", func(c *Config) { c.Audit.Retention.Days = 5000 }, "audit.retention.days"},
		{"max records", func(c *Config) { c.Audit.Retention.MaxRecords = -1 }, "audit.retention.max_records"},
		{"cron", func(c *Config) { c.Audit.Retention.PruneSchedule = "every tuesday" }, "audit.retention.prune_schedule"},
		{"archive path", func(c *Config) {
			c.Audit.Retention.ArchiveBeforeDelete = true
			c.Audit.Retention.ArchivePath = ""
		}, "audit.retention.archive_path"},
		{"query limits", func(c *Config) { c.Audit.Query.MaxLimit = 10 }, "audit.query.max_limit"},

		{"log level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "telemetry.logging.level"},
		{"log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "bad", Pattern: "([a-z"}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"buckets", func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} }, "telemetry.metrics.duration_buckets"},
		{"sampler", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Sampler = "sometimes"
		}, "telemetry.tracing.sampler"},
		{"sample ratio", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.SampleRatio = 2
		}, "telemetry.tracing.sample_ratio"},
		{"health path", func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" }, "telemetry.health.readiness_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on %q, got %v", tt.field, err)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := Default()
	cfg.Audit.Enabled = false
	cfg.Audit.Backend = "postgres"
	cfg.Telemetry.Tracing.Enabled = false
	cfg.Telemetry.Tracing.Sampler = "sometimes"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected disabled sections to be skipped, got: %v", err)
	}
}

func TestValidate_MemoryBackendIgnoresSQLite(t *testing.T) {
	cfg := Default()
	cfg.Audit.Backend = "memory"
	cfg.Audit.SQLite.Driver = "mysql"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected memory backend to ignore sqlite settings, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.ListenAddress = ""
	cfg.Moderation.FailureMode = "ajar"
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(validationErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(validationErr.Errors), err)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ValidationError
		want string
	}{
		{
			name: "no errors",
			err:  ValidationError{},
			want: "configuration validation failed",
		},
		{
			name: "single error",
			err:  ValidationError{Errors: []FieldError{{Field: "server.listen_address", Message: "required"}}},
			want: "configuration validation failed: server.listen_address: required",
		},
		{
			name: "multiple errors",
			err: ValidationError{Errors: []FieldError{
				{Field: "a", Message: "bad"},
				{Field: "b", Message: "worse"},
			}},
			want: "configuration validation failed with 2 errors:\n  - a: bad\n  - b: worse\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "audit.backend", Message: "invalid"}
	if !strings.HasPrefix(err.Error(), "audit.backend:") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
