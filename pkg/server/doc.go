// Package server provides the vesta HTTP API.
//
// # Routes
//
//   - POST /v1/comments/analyze         {"text": "..."} -> AnalysisResult
//   - POST /v1/comments/analyze/batch   {"texts": [...]} -> {"results": [...]}
//   - POST /v1/comments/moderate        {"text": "..."} -> Decision
//   - GET  /v1/audit/records            audit query parameters -> records
//   - GET  /v1/audit/export?format=csv  streamed JSON or CSV export
//
// Health endpoints and the metrics scrape endpoint are mounted when the
// corresponding options are given.
//
// # Limits
//
// Comments longer than server.max_comment_length runes are rejected with
// 413, batches larger than server.max_batch_size with 400, and bodies over
// server.max_body_bytes with 413. Errors use a single JSON envelope:
//
//	{"error": {"message": "...", "type": "invalid_request_error", "param": "text", "code": "missing_field"}}
//
// # Usage
//
//	srv := server.New(&cfg.Server, eng,
//		server.WithLogger(logger.Logger),
//		server.WithMetrics(collector, cfg.Telemetry.Metrics.Path),
//		server.WithTracer(tracer),
//		server.WithHealth(checker, cfg.Telemetry.Health, info),
//		server.WithAudit(store, cfg.Audit.Query),
//	)
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//
// Start returns after ctx is canceled and in-flight requests finish or
// server.shutdown_timeout elapses.
package server
