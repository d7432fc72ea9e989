package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/recorder"
	"mercator-hq/vesta/pkg/audit/retention"
	"mercator-hq/vesta/pkg/audit/storage"
	"mercator-hq/vesta/pkg/cli"
	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation/engine"
	"mercator-hq/vesta/pkg/server"
	"mercator-hq/vesta/pkg/telemetry/health"
	"mercator-hq/vesta/pkg/telemetry/logging"
	"mercator-hq/vesta/pkg/telemetry/metrics"
	"mercator-hq/vesta/pkg/telemetry/tracing"
)

// telemetryFlushTimeout bounds the final span export on shutdown.
const telemetryFlushTimeout = 5 * time.Second

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	noWatch       bool
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the moderation API server",
	Long: `Start the moderation API server with the specified configuration.

The server exposes the analyze, batch and moderate endpoints, the audit
query and export endpoints, health probes and Prometheus metrics. When a
config file is given it is watched and reloaded on change; SIGHUP forces a
reload. Reloads apply the log level and the engine failure mode.

Examples:
  # Start with defaults
  vesta serve

  # Start with a config file
  vesta serve --config /etc/vesta/config.yaml

  # Override listen address
  vesta serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  vesta serve --config config.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
	serveCmd.Flags().BoolVar(&serveFlags.noWatch, "no-watch", false, "do not reload the config file on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	logger.Info("starting vesta",
		"version", Version,
		"config", cfgFile,
		"failure_mode", cfg.Moderation.FailureMode,
		"audit_enabled", cfg.Audit.Enabled,
	)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tracer.Shutdown(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	ec, err := engineConfig(cfg.Moderation)
	if err != nil {
		return err
	}
	engineOpts := []engine.Option{
		engine.WithLogger(logger.With("component", "moderation.engine")),
		engine.WithTracer(tracer),
	}
	if collector != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(collector))
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	serverOpts := []server.Option{
		server.WithLogger(logger.Logger),
		server.WithTracer(tracer),
	}
	if collector != nil {
		serverOpts = append(serverOpts, server.WithMetrics(collector, cfg.Telemetry.Metrics.Path))
	}

	if cfg.Audit.Enabled {
		store, rec, pruner, err := startAudit(ctx, cfg, logger, collector)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		defer pruner.Stop()
		// Registered after store.Close so it runs first and drains into an
		// open store.
		defer rec.Close()

		engineOpts = append(engineOpts, engine.WithAuditSink(rec))
		serverOpts = append(serverOpts, server.WithAudit(store, cfg.Audit.Query))

		if p, ok := store.(storage.Pinger); ok {
			checker.RegisterNonCritical("audit_storage", health.StorageCheck(p))
		}
		capacity := cfg.Audit.Recorder.AsyncBuffer
		checker.RegisterNonCritical("audit_queue", health.QueueCheck(func() (int, int) {
			return rec.Stats().Pending, capacity
		}))
	}

	eng, err := engine.New(ec, engineOpts...)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to build moderation engine: %w", err))
	}

	// The readiness canary runs on its own engine so probes do not reach
	// the audit trail or the analysis metrics.
	canary, err := engine.New(ec, engine.WithLogger(logger.With("component", "health.canary")))
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to build canary engine: %w", err))
	}
	checker.RegisterCheck("moderation_engine", health.AnalyzerCheck(canary))
	serverOpts = append(serverOpts, server.WithHealth(checker, cfg.Telemetry.Health, versionInfo()))

	config.OnChange(func(old, updated *config.Config) {
		applyReload(logger, updated, eng, canary)
	})
	startReloaders(ctx, logger.Logger)

	srv := server.New(&cfg.Server, eng, serverOpts...)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	logger.Info("vesta stopped")
	return nil
}

// startAudit opens storage and starts the recorder and retention scheduler.
func startAudit(ctx context.Context, cfg *config.Config, logger *logging.Logger, collector *metrics.Collector) (audit.Storage, *recorder.Recorder, *retention.Pruner, error) {
	store, err := openStorage(cfg.Audit)
	if err != nil {
		return nil, nil, nil, err
	}

	recOpts := []recorder.Option{recorder.WithLogger(logger.With("component", "audit.recorder"))}
	pruneOpts := []retention.Option{retention.WithLogger(logger.With("component", "audit.retention"))}
	if collector != nil {
		recOpts = append(recOpts, recorder.WithMetrics(collector))
		pruneOpts = append(pruneOpts, retention.WithMetrics(collector))
	}

	rec := recorder.NewRecorder(store, recorderConfig(cfg.Audit), recOpts...)
	pruner := retention.NewPruner(store, retentionConfig(cfg.Audit.Retention), pruneOpts...)
	if err := pruner.Start(ctx); err != nil {
		rec.Close()
		store.Close()
		return nil, nil, nil, fmt.Errorf("failed to start retention scheduler: %w", err)
	}

	logger.Info("audit trail enabled",
		"backend", cfg.Audit.Backend,
		"retention_days", cfg.Audit.Retention.Days,
		"prune_schedule", cfg.Audit.Retention.PruneSchedule,
	)
	return store, rec, pruner, nil
}

// applyReload pushes the reloadable settings into running components.
func applyReload(logger *logging.Logger, cfg *config.Config, engines ...*engine.Engine) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevel(level); err != nil {
		logger.Warn("ignoring invalid log level from reload", "level", level, "error", err)
	}

	mode, err := engine.ParseFailureMode(cfg.Moderation.FailureMode)
	if err != nil {
		logger.Warn("ignoring invalid failure mode from reload", "error", err)
		return
	}
	for _, e := range engines {
		if err := e.SetFailureMode(mode); err != nil {
			logger.Warn("failed to apply failure mode", "error", err)
		}
	}
	logger.Info("configuration applied", "log_level", level, "failure_mode", mode)
}

// startReloaders watches the config file and listens for SIGHUP until ctx
// is canceled. Nothing is started without a config file.
func startReloaders(ctx context.Context, logger *slog.Logger) {
	if cfgFile == "" {
		return
	}

	if !serveFlags.noWatch {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			logger.Warn("config watcher disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, nil); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
			go func() {
				<-ctx.Done()
				watcher.Stop()
			}()
		}
	}

	hup, stopHUP := cli.ReloadSignal()
	go func() {
		defer stopHUP()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading configuration")
				if err := config.ReloadConfig(cfgFile); err != nil {
					logger.Error("configuration reload failed, keeping previous configuration", "error", err)
				}
			}
		}
	}()
}
