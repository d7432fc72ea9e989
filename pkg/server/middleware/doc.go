// Package middleware provides the HTTP middleware chain for the vesta API:
// panic recovery, request IDs, access logging, and per-route metrics and
// tracing.
//
// Chain order, outermost first:
//
//	handler = Recovery(logger)(RequestID(AccessLog(logger)(mux)))
//
// Instrument wraps a single route so its metrics and spans carry the route
// pattern instead of the raw path.
package middleware
