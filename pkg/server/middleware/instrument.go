package middleware

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/vesta/pkg/telemetry/logging"
	"mercator-hq/vesta/pkg/telemetry/tracing"
)

// Metrics receives one observation per request.
type Metrics interface {
	RecordHTTPRequest(route string, code int, duration time.Duration)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Instrument records metrics and a server span for route. Either m or t
// may be nil. Incoming W3C trace context is honoured, and trace and span
// IDs are stored in the request context for log correlation.
func Instrument(route string, m Metrics, t Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil && t == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusRecorder(w)

			if t == nil {
				next.ServeHTTP(rw, r)
				m.RecordHTTPRequest(route, rw.status, time.Since(start))
				return
			}

			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := t.Start(ctx, "HTTP "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", route),
				),
			)
			defer span.End()

			tracing.SetRequestAttributes(span, logging.GetRequestID(ctx))
			if traceID := tracing.TraceID(ctx); traceID != "" {
				ctx = logging.WithTraceID(ctx, traceID)
				ctx = logging.WithSpanID(ctx, tracing.SpanID(ctx))
			}

			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rw.status))
			if rw.status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rw.status))
			}
			if m != nil {
				m.RecordHTTPRequest(route, rw.status, time.Since(start))
			}
		})
	}
}
