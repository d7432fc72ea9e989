package export

import (
	"context"
	"fmt"
	"io"

	"mercator-hq/vesta/pkg/audit"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// StreamExporter is an exporter that can also consume a record channel.
type StreamExporter interface {
	audit.Exporter
	ExportStream(ctx context.Context, records <-chan *audit.Record, w io.Writer) error
}

// New returns the exporter for format. JSON output is indented and CSV
// output has a header row.
func New(format string) (StreamExporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(true), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, audit.NewExportError(format, fmt.Errorf("unsupported format (want %q or %q)", FormatJSON, FormatCSV))
	}
}

// Stream runs query against store and writes the results with exp.
func Stream(ctx context.Context, store audit.Storage, query *audit.Query, exp StreamExporter, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records, errs, err := store.QueryStream(ctx, query)
	if err != nil {
		return err
	}
	if err := exp.ExportStream(ctx, records, w); err != nil {
		return err
	}
	return <-errs
}
