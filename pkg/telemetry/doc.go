// Package telemetry groups the observability packages used by vesta.
//
// # Components
//
//   - logging: slog handler with level control, request context and PII redaction
//   - metrics: Prometheus collectors for analyses, audit writes, caches and HTTP
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness, readiness and version endpoints
//
// Each subpackage is configured from its section of config.TelemetryConfig
// and can be used on its own. The serve command wires them together:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//
//	eng, err := engine.New(engineCfg,
//		engine.WithMetrics(collector),
//		engine.WithTracer(tracer),
//	)
package telemetry
