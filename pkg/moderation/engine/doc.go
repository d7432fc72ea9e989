// Package engine orchestrates comment moderation.
//
// An Engine is built once at startup and shared. Each call runs the
// sentiment, toxicity and content analyzers concurrently, combines their
// output, applies moderation.Decide and hands the result to an AuditSink.
//
// # Usage
//
//	eng, err := engine.New(engine.DefaultConfig(),
//		engine.WithAuditSink(recorder),
//		engine.WithMetrics(collector),
//		engine.WithTracer(tracer),
//	)
//	if err != nil {
//		return err
//	}
//
//	decision := eng.ModerateRealtime(ctx, comment)
//	if !decision.Approved {
//		return errors.New(decision.Reason)
//	}
//
// # Failure Policy
//
// The three entry points never return errors. If an analyzer panics the
// engine returns a zero-score result marked Degraded. With FailOpen the
// action is approve; with FailClosed it is review. The mode can be switched
// at runtime with SetFailureMode.
//
// # Audit
//
// Every analysis is passed to the AuditSink. Sink errors and panics are
// logged and counted but never change the returned result.
package engine
