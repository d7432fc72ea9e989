package audit

import (
	"errors"
	"testing"
	"time"
)

func TestQuery_Matches(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := &Record{
		ContentHash:       "abc",
		Language:          "en",
		Topics:            []string{"fitness"},
		ToxicityScore:     0.6,
		Flags:             []FlagRecord{{Kind: "toxicity", Confidence: 0.8}},
		RecommendedAction: "review",
		AnalyzedAt:        now,
	}

	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)
	low, high := 0.5, 0.7
	tooHigh := 0.9
	yes, no := true, false

	tests := []struct {
		name  string
		query *Query
		want  bool
	}{
		{"nil query", nil, true},
		{"empty query", &Query{}, true},
		{"time window", &Query{StartTime: &before, EndTime: &after}, true},
		{"inclusive bounds", &Query{StartTime: &now, EndTime: &now}, true},
		{"after window", &Query{EndTime: &before}, false},
		{"action", &Query{Action: "review"}, true},
		{"wrong action", &Query{Action: "reject"}, false},
		{"language", &Query{Language: "fr"}, false},
		{"flag kind", &Query{FlagKind: "toxicity"}, true},
		{"missing flag", &Query{FlagKind: "spam"}, false},
		{"topic", &Query{Topic: "fitness"}, true},
		{"missing topic", &Query{Topic: "sports"}, false},
		{"hash", &Query{ContentHash: "abc"}, true},
		{"toxicity range", &Query{MinToxicity: &low, MaxToxicity: &high}, true},
		{"toxicity too low", &Query{MinToxicity: &tooHigh}, false},
		{"not degraded", &Query{Degraded: &no}, true},
		{"degraded only", &Query{Degraded: &yes}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(rec); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("disk full")

	errs := []error{
		NewStorageError("sqlite", "store", cause),
		NewQueryError("limit", cause),
		NewRecorderError("id-1", cause),
		NewRetentionError(30, 1000, cause),
		NewExportError("csv", cause),
	}
	for _, err := range errs {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
		if err.Error() == "" {
			t.Errorf("%T has empty message", err)
		}
	}

	if got := NewRecorderError("", ErrQueueFull).Error(); got != "audit recorder: audit queue full" {
		t.Errorf("Unexpected message: %q", got)
	}
}
