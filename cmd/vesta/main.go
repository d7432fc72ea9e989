// Vesta is an inline content-moderation service for user comments.
//
// It scores each comment for sentiment, toxicity and topic, recommends an
// action (approve, review, auto_hide or reject) and keeps a privacy
// preserving audit trail of every decision.
//
// Usage:
//
//	# Start the HTTP API with the default configuration
//	vesta serve
//
//	# Start with a configuration file (reloaded on change)
//	vesta serve --config /etc/vesta/config.yaml
//
//	# Analyze comments from the command line or stdin
//	vesta analyze "Great workout, thanks for sharing!"
//	cat comments.txt | vesta analyze --lines --format json
//
//	# Query and maintain the audit trail
//	vesta audit query --action reject --since 24h
//	vesta audit export --format csv --output audit.csv
//	vesta audit prune
package main

import "os"

func main() {
	os.Exit(Execute())
}
