// Package sentiment scores comment polarity with a word lexicon.
//
// Each lexicon word scores +1 or -1 with confidence 0.8. The token right
// before it can adjust the score: an intensifier ("very") multiplies the
// score by 1.5 and the confidence by 1.2, a negator ("not") flips the sign
// and multiplies the confidence by 1.1. The result is the mean word score
// clamped to [-1, 1].
package sentiment

import (
	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/tokenize"
)

const (
	baseConfidence = 0.8

	intensifierScale      = 1.5
	intensifierConfidence = 1.2

	negatorScale      = -1.0
	negatorConfidence = 1.1
)

// Analyzer is safe for concurrent use; its word sets are read-only after
// construction.
type Analyzer struct {
	positive     wordSet
	negative     wordSet
	intensifiers wordSet
	negators     wordSet
}

// NewAnalyzer builds an Analyzer from lex.
func NewAnalyzer(lex Lexicon) (*Analyzer, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		positive:     newWordSet(lex.Positive),
		negative:     newWordSet(lex.Negative),
		intensifiers: newWordSet(lex.Intensifiers),
		negators:     newWordSet(lex.Negators),
	}, nil
}

// MustNewAnalyzer is like NewAnalyzer but panics on an invalid lexicon.
func MustNewAnalyzer(lex Lexicon) *Analyzer {
	a, err := NewAnalyzer(lex)
	if err != nil {
		panic(err)
	}
	return a
}

// Analyze scores text. Text without lexicon words is neutral with zero
// confidence.
func (a *Analyzer) Analyze(text string) moderation.SentimentResult {
	words := tokenize.Words(text)

	var scoreSum, confidenceSum float64
	matched := 0

	for i, w := range words {
		var score float64
		switch {
		case a.positive.has(w):
			score = 1
		case a.negative.has(w):
			score = -1
		default:
			continue
		}
		confidence := baseConfidence

		if i > 0 {
			prev := words[i-1]
			if a.intensifiers.has(prev) {
				score *= intensifierScale
				confidence *= intensifierConfidence
			}
			if a.negators.has(prev) {
				score *= negatorScale
				confidence *= negatorConfidence
			}
		}

		scoreSum += score
		confidenceSum += confidence
		matched++
	}

	if matched == 0 {
		return moderation.SentimentResult{}
	}

	return moderation.SentimentResult{
		Score:      moderation.Clamp(scoreSum/float64(matched), -1, 1),
		Confidence: min(1, confidenceSum/float64(matched)),
	}
}
