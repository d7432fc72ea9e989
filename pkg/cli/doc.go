/*
Package cli provides the helpers shared by the vesta commands: output
formatting for analysis results, decisions and audit records, a progress
line for long batch runs, signal handling and typed command errors.

Output Formatting:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	p := cli.NewPrinter(os.Stdout, format)
	if err := p.PrintAnalysis(result); err != nil {
		return err
	}

Text output is one aligned line per item. JSON output is one indented
document per call. CSV is only supported for audit records.

Progress Reporting:

	progress := cli.NewProgress(os.Stderr, "comments")
	progress.Start(int64(len(lines)))
	progress.Add(int64(len(chunk)))
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
