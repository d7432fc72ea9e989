// Package logging builds the process logger: log/slog with a redacting
// handler and a runtime-adjustable level.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "comment analyzed", "action", "review")
//
// # Redaction
//
// With RedactPII on, every string attribute and message passes through the
// Redactor. Emails, phone numbers, card numbers, IP addresses, bearer tokens,
// API keys and @handles are replaced. Attributes named text, comment, body or
// mentions, and any key that looks like a secret, are replaced whole, so a
// stray log line cannot leak a comment.
package logging
