package moderation

import "strings"

// Decision thresholds. A score must strictly exceed a threshold to trigger it.
const (
	RejectThreshold         = 0.8
	AutoHideThreshold       = 0.6
	ReviewThreshold         = 0.4
	NegativeReviewThreshold = -0.7
)

// ReasonSeparator joins flag reasons in a Decision.
const ReasonSeparator = "; "

// Decide maps the toxicity and sentiment scores to an action.
// The first matching rule wins:
//
//	toxicity > 0.8                       -> reject
//	toxicity > 0.6                       -> auto_hide
//	toxicity > 0.4 or sentiment < -0.7   -> review
//	otherwise                            -> approve
func Decide(toxicity, sentiment float64) Action {
	switch {
	case toxicity > RejectThreshold:
		return ActionReject
	case toxicity > AutoHideThreshold:
		return ActionAutoHide
	case toxicity > ReviewThreshold || sentiment < NegativeReviewThreshold:
		return ActionReview
	default:
		return ActionApprove
	}
}

// Reasons joins the non-empty reasons of flags with ReasonSeparator.
func Reasons(flags []Flag) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.Reason != "" {
			parts = append(parts, f.Reason)
		}
	}
	return strings.Join(parts, ReasonSeparator)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
