package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"mercator-hq/vesta/pkg/audit"
)

// flushEvery is how many streamed rows are buffered between flushes.
const flushEvery = 100

// CSVExporter writes records as CSV, one row per record. Topics and flag
// kinds are joined with ";".
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header returns the CSV column names.
func Header() []string {
	return []string{
		"id", "analyzed_at", "recommended_action", "degraded",
		"content_hash", "request_id", "content_length", "language", "topics", "mention_count",
		"sentiment_score", "sentiment_confidence", "toxicity_score", "toxicity_confidence", "confidence",
		"flags",
	}
}

// Export writes records as CSV.
func (e *CSVExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header()); err != nil {
			return audit.NewExportError(FormatCSV, err)
		}
	}
	for _, record := range records {
		if err := writer.Write(Row(record)); err != nil {
			return audit.NewExportError(FormatCSV, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError(FormatCSV, err)
	}
	return nil
}

// ExportStream writes records from recordsCh as CSV, flushing periodically.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *audit.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(Header()); err != nil {
			return audit.NewExportError(FormatCSV, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError(FormatCSV, err)
				}
				return nil
			}

			if err := writer.Write(Row(record)); err != nil {
				return audit.NewExportError(FormatCSV, err)
			}

			count++
			if count%flushEvery == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError(FormatCSV, err)
				}
			}
		}
	}
}

// Row flattens a record into CSV fields in Header order.
func Row(r *audit.Record) []string {
	kinds := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		kinds = append(kinds, f.Kind)
	}

	return []string{
		r.ID,
		r.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		r.RecommendedAction,
		strconv.FormatBool(r.Degraded),
		r.ContentHash,
		r.RequestID,
		strconv.Itoa(r.ContentLength),
		r.Language,
		strings.Join(r.Topics, ";"),
		strconv.Itoa(r.MentionCount),
		formatScore(r.SentimentScore),
		formatScore(r.SentimentConfidence),
		formatScore(r.ToxicityScore),
		formatScore(r.ToxicityConfidence),
		formatScore(r.Confidence),
		strings.Join(kinds, ";"),
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
