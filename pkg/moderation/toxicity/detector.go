// Package toxicity scores abuse and spam in comments.
//
// Five checks always run and the final score is the worst signal found:
//
//   - severe terms (hate speech): score 0.9, hate_speech flag
//   - moderate terms (profanity, self-harm incitement, harassment): score 0.6, toxicity flag
//   - spam patterns (links, domains, promotional phrases): 0.2 per match, spam flag above 0.5
//   - shouting (over 70% uppercase letters, longer than 20 characters): score 0.3, inappropriate flag
//   - repetition (runs of 3+ identical characters): score 0.2, spam flag
//
// Term lists are compiled into Aho-Corasick automata over a normalized rune
// stream so that casing, accents and simple leetspeak ("1d10t") do not
// evade them.
package toxicity

import (
	"fmt"
	"strings"
	"unicode"

	"mercator-hq/vesta/pkg/moderation"
)

const (
	severeScore      = 0.9
	severeConfidence = 0.95

	moderateScore      = 0.6
	moderateConfidence = 0.8

	spamPerMatch      = 0.2
	spamThreshold     = 0.5
	spamMaxScore      = 0.9
	spamMaxConfidence = 0.9

	shoutingMinLength  = 20
	shoutingRatio      = 0.7
	shoutingScore      = 0.3
	shoutingConfidence = 0.6

	repetitionMinRun     = 3
	repetitionRatio      = 0.3
	repetitionScore      = 0.2
	repetitionConfidence = 0.5
)

// Detector is safe for concurrent use.
type Detector struct {
	severe   *termMatcher
	moderate *termMatcher
	spam     []compiledSpamPattern
}

// NewDetector compiles catalog.
func NewDetector(catalog Catalog) (*Detector, error) {
	severe, err := newTermMatcher(catalog.Severe)
	if err != nil {
		return nil, fmt.Errorf("failed to build severe term matcher: %w", err)
	}
	moderate, err := newTermMatcher(catalog.Moderate)
	if err != nil {
		return nil, fmt.Errorf("failed to build moderate term matcher: %w", err)
	}
	spam, err := compileSpamPatterns(catalog.Spam)
	if err != nil {
		return nil, err
	}
	return &Detector{severe: severe, moderate: moderate, spam: spam}, nil
}

// MustNewDetector is like NewDetector but panics on error.
func MustNewDetector(catalog Catalog) *Detector {
	d, err := NewDetector(catalog)
	if err != nil {
		panic(err)
	}
	return d
}

// Detect scores text.
func (d *Detector) Detect(text string) moderation.ToxicityResult {
	res := moderation.ToxicityResult{Flags: []moderation.Flag{}}
	if text == "" {
		return res
	}

	norm := normalize(text)

	if terms := d.severe.find(norm); len(terms) > 0 {
		raise(&res, severeScore, moderation.Flag{
			Kind:       moderation.FlagHateSpeech,
			Confidence: severeConfidence,
			Reason:     "hate speech detected: " + strings.Join(terms, ", "),
		})
	}

	if terms := d.moderate.find(norm); len(terms) > 0 {
		raise(&res, moderateScore, moderation.Flag{
			Kind:       moderation.FlagToxicity,
			Confidence: moderateConfidence,
			Reason:     "abusive or profane language",
		})
	}

	if spam := d.spamScore(text); spam > spamThreshold {
		raise(&res, min(spam, spamMaxScore), moderation.Flag{
			Kind:       moderation.FlagSpam,
			Confidence: min(spamMaxConfidence, spam),
			Reason:     "promotional content or links",
		})
	}

	if shouting(text) {
		raise(&res, shoutingScore, moderation.Flag{
			Kind:       moderation.FlagInappropriate,
			Confidence: shoutingConfidence,
			Reason:     "excessive capitalization",
		})
	}

	if repetition(text) > repetitionRatio {
		raise(&res, repetitionScore, moderation.Flag{
			Kind:       moderation.FlagSpam,
			Confidence: repetitionConfidence,
			Reason:     "excessive character repetition",
		})
	}

	res.Score = min(1, res.Score)
	res.Confidence = min(1, res.Confidence)
	return res
}

// raise lifts the score floor and appends flag. Flags are never merged.
func raise(res *moderation.ToxicityResult, floor float64, flag moderation.Flag) {
	if floor > res.Score {
		res.Score = floor
	}
	if flag.Confidence > res.Confidence {
		res.Confidence = flag.Confidence
	}
	res.Flags = append(res.Flags, flag)
}

func (d *Detector) spamScore(text string) float64 {
	var score float64
	for _, p := range d.spam {
		if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
			score += spamPerMatch * float64(n)
		}
	}
	return score
}

// shouting reports whether text is long enough and mostly uppercase letters.
func shouting(text string) bool {
	var length, letters, upper int
	for _, r := range text {
		length++
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if length <= shoutingMinLength || letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > shoutingRatio
}

// repetition counts maximal runs of at least three identical runes, divided
// by a tenth of the text length. Newlines break runs.
func repetition(text string) float64 {
	runs, length := 0, 0
	var prev rune
	streak := 0
	for _, r := range text {
		length++
		if r == prev && r != '\n' {
			streak++
		} else {
			streak = 1
			prev = r
		}
		if streak == repetitionMinRun {
			runs++
		}
	}
	if length == 0 || runs == 0 {
		return 0
	}
	return float64(runs) / (float64(length) / 10)
}
