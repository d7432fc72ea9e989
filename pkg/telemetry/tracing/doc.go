// Package tracing sets up OpenTelemetry tracing for vesta.
//
// With telemetry.tracing.enabled, spans are batched and exported over
// OTLP/gRPC. Sampling is parent-based around one of "always", "never" or
// "ratio". When disabled, New returns a Tracer backed by the no-op provider,
// so instrumented code needs no conditionals.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	eng, _ := engine.New(engCfg, engine.WithTracer(tracer))
//
// Spans carry scores, actions and flag kinds. They never carry comment text
// or mentioned handles.
package tracing
