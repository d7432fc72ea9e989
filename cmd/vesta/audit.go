package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/export"
	"mercator-hq/vesta/pkg/audit/query"
	"mercator-hq/vesta/pkg/audit/retention"
	"mercator-hq/vesta/pkg/cli"
)

var auditFlags struct {
	since        time.Duration
	start        string
	end          string
	action       string
	language     string
	flagKind     string
	topic        string
	contentHash  string
	text         string
	requestID    string
	minToxicity  float64
	maxToxicity  float64
	degraded     string
	sortBy       string
	sortOrder    string
	limit        int
	offset       int
	queryFormat  string
	exportFormat string
	output       string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and maintain the audit trail",
	Long: `Query, export and prune the moderation audit trail.

Audit records hold a fingerprint of each comment, its scores, flags and
recommended action. The comment text itself is never stored; use --text to
look up a known comment by fingerprint.

Subcommands:
  query   - Print records matching filters
  export  - Write matching records as JSON or CSV
  prune   - Apply the retention policy now`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with filters.

Examples:
  # Rejections in the last 24 hours
  vesta audit query --action reject --since 24h

  # Highly toxic Spanish comments as JSON
  vesta audit query --language es --min-toxicity 0.8 --format json

  # Was this comment ever analyzed?
  vesta audit query --text "exact comment text"`,
	Args: cobra.NoArgs,
	RunE: runAuditQuery,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit records",
	Long: `Stream matching audit records as JSON or CSV.

Examples:
  vesta audit export --format csv --output audit.csv
  vesta audit export --since 168h --flag-kind spam > spam.json`,
	Args: cobra.NoArgs,
	RunE: runAuditExport,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete records older than audit.retention.days and beyond
audit.retention.max_records, archiving them first when configured.`,
	Args: cobra.NoArgs,
	RunE: runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditExportCmd, auditPruneCmd)

	for _, c := range []*cobra.Command{auditQueryCmd, auditExportCmd} {
		f := c.Flags()
		f.DurationVar(&auditFlags.since, "since", 0, "only records analyzed within this duration (e.g. 24h)")
		f.StringVar(&auditFlags.start, "start", "", "start time (RFC 3339)")
		f.StringVar(&auditFlags.end, "end", "", "end time (RFC 3339)")
		f.StringVar(&auditFlags.action, "action", "", "recommended action (approve, review, auto_hide, reject)")
		f.StringVar(&auditFlags.language, "language", "", "language code")
		f.StringVar(&auditFlags.flagKind, "flag-kind", "", "flag kind (toxicity, spam, harassment, hate_speech, misinformation, inappropriate)")
		f.StringVar(&auditFlags.topic, "topic", "", "topic tag")
		f.StringVar(&auditFlags.contentHash, "content-hash", "", "content fingerprint")
		f.StringVar(&auditFlags.text, "text", "", "comment text to fingerprint and look up")
		f.StringVar(&auditFlags.requestID, "request-id", "", "request ID")
		f.Float64Var(&auditFlags.minToxicity, "min-toxicity", -1, "minimum toxicity score")
		f.Float64Var(&auditFlags.maxToxicity, "max-toxicity", -1, "maximum toxicity score")
		f.StringVar(&auditFlags.degraded, "degraded", "", "only degraded (true) or real (false) analyses")
		f.StringVar(&auditFlags.sortBy, "sort-by", "", "sort field (analyzed_at, toxicity_score, sentiment_score, confidence)")
		f.StringVar(&auditFlags.sortOrder, "sort-order", "", "sort order (asc, desc)")
		f.IntVar(&auditFlags.offset, "offset", 0, "records to skip")
	}
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 0, "maximum records (default from audit.query.default_limit)")
	auditQueryCmd.Flags().StringVarP(&auditFlags.queryFormat, "format", "f", "text", "output format (text, json, csv)")
	auditExportCmd.Flags().IntVar(&auditFlags.limit, "limit", 0, "maximum records (default from audit.query.max_limit)")
	auditExportCmd.Flags().StringVarP(&auditFlags.exportFormat, "format", "f", "json", "export format (json, csv)")
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default stdout)")
}

// auditValues converts the filter flags into the URL parameters accepted
// by query.Parse, so the CLI and the HTTP API validate identically.
func auditValues(now time.Time, hash func(string) string) url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}

	if auditFlags.since > 0 {
		set("start_time", now.Add(-auditFlags.since).UTC().Format(time.RFC3339))
	}
	set("start_time", auditFlags.start)
	set("end_time", auditFlags.end)
	set("action", auditFlags.action)
	set("language", auditFlags.language)
	set("flag_kind", auditFlags.flagKind)
	set("topic", auditFlags.topic)
	set("content_hash", auditFlags.contentHash)
	if auditFlags.text != "" {
		set("content_hash", hash(auditFlags.text))
	}
	set("request_id", auditFlags.requestID)
	if auditFlags.minToxicity >= 0 {
		set("min_toxicity", strconv.FormatFloat(auditFlags.minToxicity, 'f', -1, 64))
	}
	if auditFlags.maxToxicity >= 0 {
		set("max_toxicity", strconv.FormatFloat(auditFlags.maxToxicity, 'f', -1, 64))
	}
	set("degraded", auditFlags.degraded)
	set("sort_by", auditFlags.sortBy)
	set("sort_order", auditFlags.sortOrder)
	if auditFlags.limit > 0 {
		set("limit", strconv.Itoa(auditFlags.limit))
	}
	if auditFlags.offset > 0 {
		set("offset", strconv.Itoa(auditFlags.offset))
	}
	return v
}

// openAudit loads config and opens audit storage for a CLI command.
func openAudit() (audit.Storage, *auditContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if _, err := newLogger(cfg, true); err != nil {
		return nil, nil, err
	}
	if !cfg.Audit.Enabled {
		return nil, nil, cli.NewUsageError("audit trail is disabled (audit.enabled: false)")
	}
	store, err := openStorage(cfg.Audit)
	if err != nil {
		return nil, nil, err
	}
	hasher := recorderHasher(cfg.Audit.Recorder.HashKey)
	return store, &auditContext{
		defaultLimit: cfg.Audit.Query.DefaultLimit,
		maxLimit:     cfg.Audit.Query.MaxLimit,
		timeout:      cfg.Audit.Query.Timeout,
		hash:         hasher,
		retention:    retentionConfig(cfg.Audit.Retention),
	}, nil
}

type auditContext struct {
	defaultLimit int
	maxLimit     int
	timeout      time.Duration
	hash         func(string) string
	retention    *retention.Config
}

func (a *auditContext) buildQuery(limitDefault int) (*audit.Query, error) {
	q, err := query.Parse(auditValues(time.Now(), a.hash))
	if err != nil {
		return nil, cli.NewUsageError("%v", err)
	}
	if auditFlags.limit == 0 && limitDefault > 0 {
		q.Limit = limitDefault
	}
	if a.maxLimit > 0 && q.Limit > a.maxLimit {
		return nil, cli.NewUsageError("--limit must be <= %d", a.maxLimit)
	}
	return q, nil
}

func (a *auditContext) queryContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if a.timeout > 0 {
		return context.WithTimeout(parent, a.timeout)
	}
	return context.WithCancel(parent)
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(auditFlags.queryFormat)
	if err != nil {
		return err
	}

	store, ac, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	q, err := ac.buildQuery(ac.defaultLimit)
	if err != nil {
		return err
	}

	ctx, cancel := ac.queryContext(cmd.Context())
	defer cancel()

	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	return cli.NewPrinter(cmd.OutOrStdout(), format).PrintRecords(records)
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	exp, err := export.New(auditFlags.exportFormat)
	if err != nil {
		return cli.NewUsageError("%v", err)
	}

	store, ac, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	q, err := ac.buildQuery(ac.maxLimit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return cli.NewCommandError("audit export", err)
		}
		defer f.Close()
		w = f
	}

	ctx, stop := cli.WithSignals(cmd.Context())
	defer stop()

	if err := export.Stream(ctx, store, q, exp, w); err != nil {
		return cli.NewCommandError("audit export", err)
	}
	if auditFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported audit records to %s\n", auditFlags.output)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	store, ac, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := cli.WithSignals(cmd.Context())
	defer stop()

	deleted, err := retention.NewPruner(store, ac.retention).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d audit records\n", deleted)
	return nil
}
