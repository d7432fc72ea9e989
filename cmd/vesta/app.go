package main

import (
	"fmt"
	"log/slog"
	"os"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/recorder"
	"mercator-hq/vesta/pkg/audit/retention"
	"mercator-hq/vesta/pkg/audit/storage"
	"mercator-hq/vesta/pkg/cli"
	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation/content"
	"mercator-hq/vesta/pkg/moderation/engine"
	"mercator-hq/vesta/pkg/telemetry/logging"
)

// loadConfig initializes the process configuration from --config and the
// environment.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return config.GetConfig(), nil
}

// newLogger builds the process logger and installs it as the slog default.
// CLI commands that print results log to stderr.
func newLogger(cfg *config.Config, stderr bool) (*logging.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if stderr {
		lc.Writer = os.Stderr
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if verbose {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, err
		}
	}
	slog.SetDefault(logger.Logger)
	return logger, nil
}

// engineConfig maps the moderation section onto engine settings.
func engineConfig(mc config.ModerationConfig) (engine.Config, error) {
	ec := engine.DefaultConfig()

	mode, err := engine.ParseFailureMode(mc.FailureMode)
	if err != nil {
		return ec, cli.NewConfigError(cfgFile, err)
	}
	ec.FailureMode = mode
	if mc.BatchWorkers > 0 {
		ec.BatchWorkers = mc.BatchWorkers
	}
	ec.CacheSize = mc.CacheSize
	ec.Content.Mode = content.LanguageMode(mc.Language.Detector)
	ec.Content.Fallback = mc.Language.Fallback
	ec.Content.MinConfidence = mc.Language.MinConfidence
	ec.ExtraSevereTerms = mc.Terms.Severe
	ec.ExtraModerateTerms = mc.Terms.Moderate
	return ec, nil
}

// openStorage opens the configured audit backend.
func openStorage(ac config.AuditConfig) (audit.Storage, error) {
	sc := storage.DefaultSQLiteConfig()
	sc.Path = ac.SQLite.Path
	if ac.SQLite.Driver != "" {
		sc.Driver = ac.SQLite.Driver
	}
	sc.MaxOpenConns = ac.SQLite.MaxOpenConns
	sc.MaxIdleConns = ac.SQLite.MaxIdleConns
	sc.WALMode = ac.SQLite.WALMode
	sc.BusyTimeout = ac.SQLite.BusyTimeout

	store, err := storage.New(storage.Config{Backend: ac.Backend, SQLite: sc})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit storage: %w", err)
	}
	return store, nil
}

func recorderConfig(ac config.AuditConfig) *recorder.Config {
	return &recorder.Config{
		Enabled:        ac.Enabled,
		AsyncBuffer:    ac.Recorder.AsyncBuffer,
		WriteTimeout:   ac.Recorder.WriteTimeout,
		MaxFieldLength: ac.Recorder.MaxFieldLength,
		HashKey:        ac.Recorder.HashKey,
	}
}

func retentionConfig(rc config.RetentionConfig) *retention.Config {
	return &retention.Config{
		RetentionDays:       rc.Days,
		MaxRecords:          rc.MaxRecords,
		PruneSchedule:       rc.PruneSchedule,
		ArchiveBeforeDelete: rc.ArchiveBeforeDelete,
		ArchivePath:         rc.ArchivePath,
	}
}

// recorderHasher returns the fingerprint function the recorder uses, so a
// known comment can be found by its content hash.
func recorderHasher(key string) func(string) string {
	return recorder.NewHasher(key).SumString
}
