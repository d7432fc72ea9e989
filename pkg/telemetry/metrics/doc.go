// Package metrics exposes vesta's Prometheus metrics.
//
// A single Collector is created at startup and passed to the engine, the
// audit recorder, the retention pruner and the HTTP server; each depends on
// it only through a small interface of its own.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, _ := engine.New(engCfg, engine.WithMetrics(collector))
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Label values are bounded: actions, flag kinds, failure stages and audit
// statuses are fixed sets, and HTTP routes pass through a CardinalityLimiter.
package metrics
