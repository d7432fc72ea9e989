// Package tokenize normalizes comment text into word tokens.
package tokenize

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonWordChars matches everything that is not a letter, digit, underscore or
// whitespace. Matches are removed, not replaced, so "don't" becomes "dont".
var nonWordChars = regexp.MustCompile(`[^\pL\pN_\s]+`)

// Words lowercases text, folds accents, strips non-word characters and
// splits on whitespace. Token order is preserved. Empty text yields nil.
func Words(text string) []string {
	if text == "" {
		return nil
	}
	bare := nonWordChars.ReplaceAllString(strings.ToLower(text), "")
	return strings.Fields(Fold(bare))
}

// Fields lowercases text and splits it on whitespace without stripping
// punctuation.
func Fields(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Fold removes combining marks: "café" becomes "cafe".
func Fold(s string) string {
	// transformers carry state, so a fresh chain is needed per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		slog.Warn("unicode normalization error", "error", err)
		return s
	}
	return out
}
