package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/vesta/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vesta",
	Short: "Vesta - inline comment moderation",
	Long: `Vesta analyzes user comments as they are posted and recommends a
moderation action.

Each comment is scored for:
  - Sentiment (lexicon based, with negation and intensifiers)
  - Toxicity (severe and moderate terms, spam, shouting, repetition)
  - Content (topics, @mentions, language)

and mapped to approve, review, auto_hide or reject. Decisions are recorded
in an audit trail that stores fingerprints and scores, never comment text.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus VESTA_* environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.SetVersionTemplate("vesta {{.Version}}\n")
}
