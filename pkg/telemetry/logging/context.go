package logging

import (
	"context"
	"log/slog"
)

// ctxField identifies a request-scoped value that Logger copies into every
// record logged with a context.
type ctxField int

const (
	requestIDField ctxField = iota
	traceIDField
	spanIDField
)

// attrNames maps each field to its log attribute, in output order.
var attrNames = [...]string{
	requestIDField: "request_id",
	traceIDField:   "trace_id",
	spanIDField:    "span_id",
}

func withField(ctx context.Context, f ctxField, v string) context.Context {
	return context.WithValue(ctx, f, v)
}

func field(ctx context.Context, f ctxField) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(f).(string)
	return v
}

// WithRequestID returns ctx carrying the HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withField(ctx, requestIDField, id)
}

// GetRequestID returns the request ID in ctx, or "".
func GetRequestID(ctx context.Context) string { return field(ctx, requestIDField) }

// WithTraceID returns ctx carrying the hex trace ID of the active span.
func WithTraceID(ctx context.Context, id string) context.Context {
	return withField(ctx, traceIDField, id)
}

func GetTraceID(ctx context.Context) string { return field(ctx, traceIDField) }

func WithSpanID(ctx context.Context, id string) context.Context {
	return withField(ctx, spanIDField, id)
}

func GetSpanID(ctx context.Context) string { return field(ctx, spanIDField) }

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for f, name := range attrNames {
		if v := field(ctx, ctxField(f)); v != "" {
			attrs = append(attrs, slog.String(name, v))
		}
	}
	return attrs
}
