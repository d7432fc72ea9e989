package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/vesta/pkg/audit"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records as a JSON array. An empty input yields "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	if records == nil {
		records = []*audit.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return audit.NewExportError(FormatJSON, err)
	}
	return nil
}

// ExportStream writes records from recordsCh as a JSON array without
// holding them all in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *audit.Record, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return audit.NewExportError(FormatJSON, err)
	}

	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				closing := "]\n"
				if e.Pretty && !first {
					closing = "\n]\n"
				}
				if _, err := io.WriteString(w, closing); err != nil {
					return audit.NewExportError(FormatJSON, err)
				}
				return nil
			}

			sep := ","
			if first {
				sep = ""
			}
			if e.Pretty {
				sep += "\n  "
			}
			first = false

			data, err := e.serialize(record)
			if err != nil {
				return audit.NewExportError(FormatJSON, err)
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return audit.NewExportError(FormatJSON, err)
			}
			if _, err := w.Write(data); err != nil {
				return audit.NewExportError(FormatJSON, err)
			}
		}
	}
}

func (e *JSONExporter) serialize(record *audit.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
