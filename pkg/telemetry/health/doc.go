// Package health serves liveness, readiness and version endpoints.
//
// Readiness runs the registered checks concurrently, each bounded by the
// check timeout. vesta registers the engine canary as critical and the audit
// store and recorder queue as non-critical:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("engine", health.AnalyzerCheck(eng))
//	checker.RegisterNonCritical("audit_storage", health.StorageCheck(store))
//	health.Register(mux, checker, cfg.Telemetry.Health, health.NewVersionInfo(version, commit, date))
//
// GET and HEAD are both accepted; HEAD gets headers only.
package health
