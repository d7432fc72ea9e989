// Package moderation defines the shared result types and the decision policy
// of the comment moderation engine.
//
// The analyzers live in sub-packages:
//
//   - tokenize: text normalization and word splitting
//   - sentiment: lexicon scoring with intensifiers and negators
//   - toxicity: tiered term catalogs plus spam, caps and repetition heuristics
//   - content: topics, @mentions and language
//   - engine: orchestration, batch and real-time entry points, audit hand-off
//
// # Decision Policy
//
// The recommended action is a pure function of the toxicity and sentiment
// scores (see Decide). No other state influences it, so identical text always
// yields the same action.
//
//	action := moderation.Decide(result.Toxicity.Score, result.Sentiment.Score)
//	if action.Severity() >= moderation.ActionAutoHide.Severity() {
//		// hide the comment
//	}
package moderation
