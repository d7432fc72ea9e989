// Package export writes audit records as JSON or CSV, either from a slice or
// streamed from audit.Storage.QueryStream.
package export
