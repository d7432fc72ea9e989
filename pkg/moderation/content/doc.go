// Package content extracts topics, @mentions and language from comments.
//
// # Topics
//
// A topic is present when one of its keywords is a substring of a lowercase
// whitespace-delimited token. Topics are boolean; there is no ranking.
//
// # Language
//
// Stopword voting over a small list per language. The language with the
// most hits wins and ties go to the earlier entry of SupportedLanguages.
// When nothing matches, the configured fallback is used, or in hybrid mode
// the whatlanggo statistical detector is consulted first.
//
//	analyzer, err := content.NewAnalyzer(content.Config{
//		Mode:          content.LanguageHybrid,
//		Fallback:      "en",
//		MinConfidence: 0.5,
//	})
//	meta := analyzer.Analyze("leg day with @sam was brutal")
package content
