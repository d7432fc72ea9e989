package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VESTA_"

// LoadConfig reads a YAML file on top of Default and validates the result.
// Environment variables are not consulted; see LoadConfigWithEnvOverrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and applies defaults to anything the
// document zeroed. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads path, applies VESTA_* environment
// overrides and validates again. An empty path starts from Default.
//
// Variables follow VESTA_SECTION_FIELD, e.g. VESTA_SERVER_LISTEN_ADDRESS
// or VESTA_MODERATION_FAILURE_MODE.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// envOverrides maps variable suffixes to setters.
func envOverrides(cfg *Config) map[string]func(string) error {
	return map[string]func(string) error{
		// Server
		"SERVER_LISTEN_ADDRESS":     setString(&cfg.Server.ListenAddress),
		"SERVER_READ_TIMEOUT":       setDuration(&cfg.Server.ReadTimeout),
		"SERVER_WRITE_TIMEOUT":      setDuration(&cfg.Server.WriteTimeout),
		"SERVER_SHUTDOWN_TIMEOUT":   setDuration(&cfg.Server.ShutdownTimeout),
		"SERVER_MAX_COMMENT_LENGTH": setInt(&cfg.Server.MaxCommentLength),
		"SERVER_MAX_BATCH_SIZE":     setInt(&cfg.Server.MaxBatchSize),

		// Moderation
		"MODERATION_FAILURE_MODE":            setString(&cfg.Moderation.FailureMode),
		"MODERATION_BATCH_WORKERS":           setInt(&cfg.Moderation.BatchWorkers),
		"MODERATION_CACHE_SIZE":              setInt(&cfg.Moderation.CacheSize),
		"MODERATION_LANGUAGE_DETECTOR":       setString(&cfg.Moderation.Language.Detector),
		"MODERATION_LANGUAGE_FALLBACK":       setString(&cfg.Moderation.Language.Fallback),
		"MODERATION_LANGUAGE_MIN_CONFIDENCE": setFloat(&cfg.Moderation.Language.MinConfidence),

		// Audit
		"AUDIT_ENABLED":                  setBool(&cfg.Audit.Enabled),
		"AUDIT_BACKEND":                  setString(&cfg.Audit.Backend),
		"AUDIT_SQLITE_PATH":              setString(&cfg.Audit.SQLite.Path),
		"AUDIT_SQLITE_DRIVER":            setString(&cfg.Audit.SQLite.Driver),
		"AUDIT_RECORDER_ASYNC_BUFFER":    setInt(&cfg.Audit.Recorder.AsyncBuffer),
		"AUDIT_RECORDER_HASH_KEY":        setString(&cfg.Audit.Recorder.HashKey),
		"AUDIT_RETENTION_DAYS":           setInt(&cfg.Audit.Retention.Days),
		"AUDIT_RETENTION_PRUNE_SCHEDULE": setString(&cfg.Audit.Retention.PruneSchedule),

		// Telemetry
		"TELEMETRY_LOGGING_LEVEL":        setString(&cfg.Telemetry.Logging.Level),
		"TELEMETRY_LOGGING_FORMAT":       setString(&cfg.Telemetry.Logging.Format),
		"TELEMETRY_METRICS_ENABLED":      setBool(&cfg.Telemetry.Metrics.Enabled),
		"TELEMETRY_METRICS_PATH":         setString(&cfg.Telemetry.Metrics.Path),
		"TELEMETRY_TRACING_ENABLED":      setBool(&cfg.Telemetry.Tracing.Enabled),
		"TELEMETRY_TRACING_ENDPOINT":     setString(&cfg.Telemetry.Tracing.Endpoint),
		"TELEMETRY_TRACING_SAMPLE_RATIO": setFloat(&cfg.Telemetry.Tracing.SampleRatio),
	}
}

// applyEnvOverrides applies every set VESTA_* variable. A value that does
// not parse is an error rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError
	for suffix, set := range envOverrides(cfg) {
		val, ok := os.LookupEnv(EnvPrefix + suffix)
		if !ok || val == "" {
			continue
		}
		if err := set(val); err != nil {
			errs = append(errs, FieldError{
				Field:   EnvPrefix + suffix,
				Message: err.Error(),
			})
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return ValidationError{Errors: errs}
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*dst = b
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*dst = i
		return nil
	}
}

func setFloat(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		*dst = f
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		*dst = d
		return nil
	}
}
