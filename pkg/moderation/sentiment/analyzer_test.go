package sentiment

import (
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := MustNewAnalyzer(DefaultLexicon())

	tests := []struct {
		name           string
		text           string
		wantScore      float64
		wantConfidence float64
	}{
		{"empty", "", 0, 0},
		{"no lexicon words", "the quick brown fox", 0, 0},
		{"positive", "amazing", 1, 0.8},
		{"negative", "this is terrible", -1, 0.8},
		{"negated positive", "not amazing", -1, 0.88},
		{"negated negative", "not bad at all", 1, 0.88},
		{"intensified positive clamps", "very amazing", 1, 0.96},
		{"intensified negative clamps", "extremely awful", -1, 0.96},
		{"mixed averages", "great workout but terrible music", 0, 0.8},
		{"contraction negator", "I don't love it", -1, 0.88},
		{"punctuation ignored", "AMAZING!!!", 1, 0.8},
		{"modifier looks one token back", "not a good idea", 1, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if !approx(got.Score, tt.wantScore) {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if !approx(got.Confidence, tt.wantConfidence) {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestAnalyzer_NegationFlipsPolarity(t *testing.T) {
	a := MustNewAnalyzer(DefaultLexicon())

	pos := a.Analyze("amazing")
	neg := a.Analyze("not amazing")

	if pos.Score <= 0 {
		t.Errorf("Expected positive score, got %v", pos.Score)
	}
	if neg.Score >= 0 {
		t.Errorf("Expected negative score, got %v", neg.Score)
	}
	if !approx(math.Abs(pos.Score), math.Abs(neg.Score)) {
		t.Errorf("Expected same magnitude, got %v and %v", pos.Score, neg.Score)
	}
}

func TestAnalyzer_Ranges(t *testing.T) {
	a := MustNewAnalyzer(DefaultLexicon())

	inputs := []string{
		strings.Repeat("very amazing ", 50),
		strings.Repeat("extremely awful ", 50),
		"not not not bad",
		"so so so good",
		"😀 🎉 great",
	}
	for _, in := range inputs {
		got := a.Analyze(in)
		if got.Score < -1 || got.Score > 1 {
			t.Errorf("Score %v out of range for %q", got.Score, in)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Confidence %v out of range for %q", got.Confidence, in)
		}
	}
}

func TestNewAnalyzer_RejectsOverlap(t *testing.T) {
	lex := DefaultLexicon()
	lex.Negative = append(lex.Negative, "great")

	if _, err := NewAnalyzer(lex); err == nil {
		t.Fatal("Expected error for overlapping lexicons")
	}

	lex = DefaultLexicon()
	lex.Negators = append(lex.Negators, "very")
	if _, err := NewAnalyzer(lex); err == nil {
		t.Fatal("Expected error for overlapping modifiers")
	}
}

func TestDefaultLexicon_Valid(t *testing.T) {
	if err := DefaultLexicon().Validate(); err != nil {
		t.Fatalf("DefaultLexicon() invalid: %v", err)
	}
}
