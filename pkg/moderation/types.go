package moderation

import (
	"fmt"
	"time"
)

// FlagKind is the closed set of reasons a detector can attach to a comment.
type FlagKind string

const (
	FlagToxicity       FlagKind = "toxicity"
	FlagSpam           FlagKind = "spam"
	FlagHarassment     FlagKind = "harassment"
	FlagHateSpeech     FlagKind = "hate_speech"
	FlagMisinformation FlagKind = "misinformation"
	FlagInappropriate  FlagKind = "inappropriate"
)

// FlagKinds lists every valid flag kind in declaration order.
var FlagKinds = []FlagKind{
	FlagToxicity,
	FlagSpam,
	FlagHarassment,
	FlagHateSpeech,
	FlagMisinformation,
	FlagInappropriate,
}

// Valid reports whether k is one of the declared flag kinds.
func (k FlagKind) Valid() bool {
	switch k {
	case FlagToxicity, FlagSpam, FlagHarassment, FlagHateSpeech, FlagMisinformation, FlagInappropriate:
		return true
	}
	return false
}

func (k FlagKind) String() string { return string(k) }

// ParseFlagKind converts s into a FlagKind.
func ParseFlagKind(s string) (FlagKind, error) {
	k := FlagKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown flag kind %q", s)
	}
	return k, nil
}

// Action is the engine's recommended handling for a comment.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReview   Action = "review"
	ActionAutoHide Action = "auto_hide"
	ActionReject   Action = "reject"
)

// Actions lists every action from least to most severe.
var Actions = []Action{ActionApprove, ActionReview, ActionAutoHide, ActionReject}

// Severity orders actions: approve < review < auto_hide < reject.
// Unknown actions return -1.
func (a Action) Severity() int {
	switch a {
	case ActionApprove:
		return 0
	case ActionReview:
		return 1
	case ActionAutoHide:
		return 2
	case ActionReject:
		return 3
	}
	return -1
}

// Valid reports whether a is one of the declared actions.
func (a Action) Valid() bool { return a.Severity() >= 0 }

func (a Action) String() string { return string(a) }

// ParseAction converts s into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Flag is a typed reason code attached when a detector crosses a threshold.
type Flag struct {
	// Kind is the category of the detection.
	Kind FlagKind `json:"kind"`

	// Confidence is the detector's certainty from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	// Reason is a short human-readable explanation, safe to show the author.
	Reason string `json:"reason"`
}

// SentimentResult is the polarity of a comment.
type SentimentResult struct {
	// Score ranges from -1.0 (negative) to 1.0 (positive).
	Score float64 `json:"score"`

	// Confidence ranges from 0.0 to 1.0. Zero when no lexicon word matched.
	Confidence float64 `json:"confidence"`
}

// ToxicityResult is the abuse/spam severity of a comment.
type ToxicityResult struct {
	// Score ranges from 0.0 to 1.0 and is the worst signal found.
	Score float64 `json:"score"`

	// Confidence is the highest flag confidence, 0 when there are no flags.
	Confidence float64 `json:"confidence"`

	// Flags are listed in the order their checks ran. Never nil.
	Flags []Flag `json:"flags"`
}

// ContentMetadata describes what a comment is about.
type ContentMetadata struct {
	// Topics is the sorted set of matched topic tags. Never nil.
	Topics []string `json:"topics"`

	// Mentions holds @handles without the '@', deduplicated in first-seen order. Never nil.
	Mentions []string `json:"mentions"`

	// Language is a two-letter ISO 639-1 code.
	Language string `json:"language"`
}

// AnalysisResult is the aggregate returned for every analyzed comment.
// Values are never mutated after construction and may be shared.
type AnalysisResult struct {
	Sentiment SentimentResult `json:"sentiment"`
	Toxicity  ToxicityResult  `json:"toxicity"`
	Content   ContentMetadata `json:"content"`

	// Confidence is max(sentiment.confidence, toxicity.confidence).
	Confidence float64 `json:"confidence"`

	RecommendedAction Action    `json:"recommended_action"`
	AnalyzedAt        time.Time `json:"analyzed_at"`

	// Degraded is set when an analyzer failed and the result is the
	// engine's configured safe default rather than a real analysis.
	Degraded bool `json:"degraded,omitempty"`
}

// Flags is shorthand for r.Toxicity.Flags.
func (r *AnalysisResult) Flags() []Flag {
	return r.Toxicity.Flags
}

// Decision is the pass/fail wrapper used on the comment submission path.
type Decision struct {
	// Approved is true iff the recommended action is approve.
	Approved bool `json:"approved"`

	// Reason explains a rejection. Empty when approved.
	Reason string `json:"reason,omitempty"`

	Analysis *AnalysisResult `json:"analysis"`
}
