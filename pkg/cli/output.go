package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/export"
	"mercator-hq/vesta/pkg/moderation"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned plain text (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV with a header row. Audit records only.
	FormatCSV OutputFormat = "csv"
)

// ParseOutputFormat validates a --format value. "" selects text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", NewUsageError("unsupported format %q (want text, json or csv)", s)
	}
}

// Printer writes command results in one format.
type Printer struct {
	w      io.Writer
	format OutputFormat
}

// NewPrinter returns a Printer for format.
func NewPrinter(w io.Writer, format OutputFormat) *Printer {
	return &Printer{w: w, format: format}
}

// Format returns the printer's output format.
func (p *Printer) Format() OutputFormat {
	return p.format
}

// PrintAnalyses writes results, one per input comment.
func (p *Printer) PrintAnalyses(results []*moderation.AnalysisResult) error {
	switch p.format {
	case FormatJSON:
		return writeJSON(p.w, results)
	case FormatText:
		tw := newTabWriter(p.w)
		fmt.Fprintln(tw, "#\tACTION\tTOXICITY\tSENTIMENT\tCONFIDENCE\tLANG\tTOPICS\tFLAGS")
		for i, r := range results {
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%+.2f\t%.2f\t%s\t%s\t%s\n",
				i+1,
				r.RecommendedAction,
				r.Toxicity.Score,
				r.Sentiment.Score,
				r.Confidence,
				r.Content.Language,
				joinOrDash(r.Content.Topics),
				flagSummary(r.Toxicity.Flags),
			)
		}
		return tw.Flush()
	default:
		return NewUsageError("format %s is not supported for analysis results", p.format)
	}
}

// PrintDecisions writes realtime decisions, one per input comment.
func (p *Printer) PrintDecisions(decisions []*moderation.Decision) error {
	switch p.format {
	case FormatJSON:
		return writeJSON(p.w, decisions)
	case FormatText:
		tw := newTabWriter(p.w)
		fmt.Fprintln(tw, "#\tAPPROVED\tACTION\tREASON")
		for i, d := range decisions {
			action := moderation.ActionApprove
			if d.Analysis != nil {
				action = d.Analysis.RecommendedAction
			}
			reason := d.Reason
			if reason == "" {
				reason = "-"
			}
			fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", i+1, d.Approved, action, reason)
		}
		return tw.Flush()
	default:
		return NewUsageError("format %s is not supported for decisions", p.format)
	}
}

// PrintRecords writes audit records.
func (p *Printer) PrintRecords(records []*audit.Record) error {
	switch p.format {
	case FormatJSON:
		if records == nil {
			records = []*audit.Record{}
		}
		return writeJSON(p.w, records)
	case FormatCSV:
		return export.NewCSVExporter(true).Export(context.Background(), records, p.w)
	case FormatText:
		tw := newTabWriter(p.w)
		fmt.Fprintln(tw, "ANALYZED AT\tACTION\tTOXICITY\tSENTIMENT\tLANG\tFLAGS\tHASH")
		for _, r := range records {
			kinds := make([]string, 0, len(r.Flags))
			for _, f := range r.Flags {
				kinds = append(kinds, f.Kind)
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%+.2f\t%s\t%s\t%s\n",
				r.AnalyzedAt.UTC().Format("2006-01-02T15:04:05Z"),
				r.RecommendedAction,
				r.ToxicityScore,
				r.SentimentScore,
				r.Language,
				joinOrDash(kinds),
				shortHash(r.ContentHash),
			)
		}
		return tw.Flush()
	default:
		return NewUsageError("unsupported format %s", p.format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func flagSummary(flags []moderation.Flag) string {
	if len(flags) == 0 {
		return "-"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = fmt.Sprintf("%s(%.2f)", f.Kind, f.Confidence)
	}
	return strings.Join(parts, ",")
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "-"
	}
	return h
}
