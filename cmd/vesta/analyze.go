package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/vesta/pkg/audit/recorder"
	"mercator-hq/vesta/pkg/cli"
	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/engine"
)

// analyzeChunk is the number of comments analyzed per batch call.
const analyzeChunk = 100

var analyzeFlags struct {
	lines    bool
	realtime bool
	format   string
	failOn   string
	progress bool
	record   bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Analyze comments from arguments or stdin",
	Long: `Analyze one or more comments and print the results.

Each argument is one comment. Without arguments the comment is read from
stdin; with --lines every non-empty stdin line is a separate comment.

Examples:
  # Analyze a single comment
  vesta analyze "Loved this routine, thanks!"

  # Analyze a file, one comment per line, as JSON
  vesta analyze --lines --format json < comments.txt

  # Print realtime decisions instead of full analyses
  vesta analyze --realtime "BUY NOW click here"

  # Exit with status 4 if any comment needs at least review
  vesta analyze --lines --fail-on review < comments.txt`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeFlags.lines, "lines", false, "treat each stdin line as a separate comment")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.realtime, "realtime", false, "print moderation decisions instead of analyses")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.format, "format", "f", "text", "output format (text, json)")
	analyzeCmd.Flags().StringVar(&analyzeFlags.failOn, "fail-on", "", "exit with status 4 if any action is at least this severe (review, auto_hide, reject)")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.progress, "progress", false, "show progress on stderr")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.record, "record", false, "write results to the configured audit trail")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(analyzeFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewUsageError("csv output is only available for audit records")
	}
	var threshold moderation.Action
	if analyzeFlags.failOn != "" {
		if threshold, err = moderation.ParseAction(analyzeFlags.failOn); err != nil {
			return cli.NewUsageError("invalid --fail-on: %v", err)
		}
	}

	texts, err := readComments(args, cmd.InOrStdin(), analyzeFlags.lines)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}

	ec, err := engineConfig(cfg.Moderation)
	if err != nil {
		return err
	}
	opts := []engine.Option{engine.WithLogger(logger.With("component", "moderation.engine"))}

	if analyzeFlags.record {
		if !cfg.Audit.Enabled {
			return cli.NewUsageError("--record requires audit.enabled in the configuration")
		}
		store, err := openStorage(cfg.Audit)
		if err != nil {
			return cli.NewCommandError("analyze", err)
		}
		defer store.Close()
		rec := recorder.NewRecorder(store, recorderConfig(cfg.Audit), recorder.WithLogger(logger.With("component", "audit.recorder")))
		// Close drains the queue before the store closes.
		defer rec.Close()
		opts = append(opts, engine.WithAuditSink(rec))
	}

	eng, err := engine.New(ec, opts...)
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := cli.WithSignals(ctx)
	defer stop()

	var progress *cli.Progress
	if analyzeFlags.progress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), "comments")
		progress.Start(int64(len(texts)))
	}

	results := make([]*moderation.AnalysisResult, 0, len(texts))
	for start := 0; start < len(texts); start += analyzeChunk {
		if err := ctx.Err(); err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return cli.NewCommandError("analyze", err)
		}
		end := min(start+analyzeChunk, len(texts))
		results = append(results, eng.AnalyzeComments(ctx, texts[start:end])...)
		if progress != nil {
			progress.Add(int64(end - start))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	printer := cli.NewPrinter(cmd.OutOrStdout(), format)
	if analyzeFlags.realtime {
		decisions := make([]*moderation.Decision, len(results))
		for i, r := range results {
			decisions[i] = engine.DecisionFor(r)
		}
		err = printer.PrintDecisions(decisions)
	} else {
		err = printer.PrintAnalyses(results)
	}
	if err != nil {
		return err
	}

	if threshold != "" {
		if n := countAtLeast(results, threshold); n > 0 {
			return fmt.Errorf("%d of %d comments at or above %s: %w", n, len(results), threshold, cli.ErrFlagged)
		}
	}
	return nil
}

// readComments returns args, or stdin as one comment, or stdin lines.
func readComments(args []string, stdin io.Reader, lines bool) ([]string, error) {
	if len(args) > 0 {
		if lines {
			return nil, cli.NewUsageError("--lines reads stdin and cannot be combined with arguments")
		}
		return args, nil
	}

	if !lines {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		text := strings.TrimRight(string(data), "\r\n")
		if text == "" {
			return nil, cli.NewUsageError("no comment given: pass text as arguments or on stdin")
		}
		return []string{text}, nil
	}

	var texts []string
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(texts) == 0 {
		return nil, cli.NewUsageError("no comments on stdin")
	}
	return texts, nil
}

func countAtLeast(results []*moderation.AnalysisResult, threshold moderation.Action) int {
	n := 0
	for _, r := range results {
		if r.RecommendedAction.Severity() >= threshold.Severity() {
			n++
		}
	}
	return n
}
