package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"
  max_batch_size: 50

moderation:
  failure_mode: closed
  language:
    detector: hybrid
    fallback: es
  terms:
    moderate: ["grifter"]

audit:
  backend: memory
  retention:
    days: 30
    max_records: 100000

telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Expected listen address %q, got %q", "0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("Expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxBatchSize != 50 {
		t.Errorf("Expected max batch size 50, got %d", cfg.Server.MaxBatchSize)
	}
	if cfg.Moderation.FailureMode != "closed" {
		t.Errorf("Expected failure mode closed, got %q", cfg.Moderation.FailureMode)
	}
	if cfg.Moderation.Language.Detector != "hybrid" || cfg.Moderation.Language.Fallback != "es" {
		t.Errorf("Unexpected language config: %+v", cfg.Moderation.Language)
	}
	if len(cfg.Moderation.Terms.Moderate) != 1 || cfg.Moderation.Terms.Moderate[0] != "grifter" {
		t.Errorf("Unexpected moderate terms: %v", cfg.Moderation.Terms.Moderate)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("Expected backend memory, got %q", cfg.Audit.Backend)
	}
	if cfg.Audit.Retention.MaxRecords != 100000 {
		t.Errorf("Expected max records 100000, got %d", cfg.Audit.Retention.MaxRecords)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Expected format text, got %q", cfg.Telemetry.Logging.Format)
	}

	// Untouched sections keep defaults, booleans included.
	if !cfg.Audit.Enabled {
		t.Error("Expected audit to stay enabled when omitted")
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("Expected write timeout %v, got %v", DefaultWriteTimeout, cfg.Server.WriteTimeout)
	}
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
audit:
  enabled: false
telemetry:
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Audit.Enabled {
		t.Error("Expected audit disabled")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Expected metrics disabled")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
moderation:
  failure_mode: sideways
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError in chain, got %T: %v", err, err)
	}
	if validationErr.Errors[0].Field != "moderation.failure_mode" {
		t.Errorf("Expected moderation.failure_mode, got %q", validationErr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
telemetry:
  logging:
    level: info
`)

	t.Setenv("VESTA_SERVER_LISTEN_ADDRESS", "0.0.0.0:9090")
	t.Setenv("VESTA_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("VESTA_SERVER_MAX_BATCH_SIZE", "25")
	t.Setenv("VESTA_MODERATION_FAILURE_MODE", "closed")
	t.Setenv("VESTA_MODERATION_LANGUAGE_MIN_CONFIDENCE", "0.8")
	t.Setenv("VESTA_AUDIT_ENABLED", "false")
	t.Setenv("VESTA_AUDIT_RECORDER_HASH_KEY", "s3cret")
	t.Setenv("VESTA_TELEMETRY_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Expected listen address from env, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxBatchSize != 25 {
		t.Errorf("Expected max batch size 25, got %d", cfg.Server.MaxBatchSize)
	}
	if cfg.Moderation.FailureMode != "closed" {
		t.Errorf("Expected failure mode closed, got %q", cfg.Moderation.FailureMode)
	}
	if cfg.Moderation.Language.MinConfidence != 0.8 {
		t.Errorf("Expected min confidence 0.8, got %v", cfg.Moderation.Language.MinConfidence)
	}
	if cfg.Audit.Enabled {
		t.Error("Expected audit disabled from env")
	}
	if cfg.Audit.Recorder.HashKey != "s3cret" {
		t.Errorf("Expected hash key from env, got %q", cfg.Audit.Recorder.HashKey)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("VESTA_SERVER_LISTEN_ADDRESS", ":7070")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}
	if cfg.Server.ListenAddress != ":7070" {
		t.Errorf("Expected :7070, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Moderation.FailureMode != DefaultFailureMode {
		t.Errorf("Expected default failure mode, got %q", cfg.Moderation.FailureMode)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValues(t *testing.T) {
	t.Setenv("VESTA_SERVER_READ_TIMEOUT", "soon")
	t.Setenv("VESTA_AUDIT_ENABLED", "perhaps")
	t.Setenv("VESTA_MODERATION_CACHE_SIZE", "lots")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("Expected error for invalid env values")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %T: %v", err, err)
	}
	if len(validationErr.Errors) != 3 {
		t.Fatalf("Expected 3 errors, got %d: %v", len(validationErr.Errors), err)
	}

	want := []string{"VESTA_AUDIT_ENABLED", "VESTA_MODERATION_CACHE_SIZE", "VESTA_SERVER_READ_TIMEOUT"}
	for i, field := range want {
		if validationErr.Errors[i].Field != field {
			t.Errorf("Error %d: expected field %q, got %q", i, field, validationErr.Errors[i].Field)
		}
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesAfterOverride(t *testing.T) {
	t.Setenv("VESTA_TELEMETRY_LOGGING_LEVEL", "loud")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("Expected validation error after override")
	}
	if !strings.Contains(err.Error(), "telemetry.logging.level") {
		t.Errorf("Expected logging level error, got %v", err)
	}
}
