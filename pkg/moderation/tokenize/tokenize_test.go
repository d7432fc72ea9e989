package tokenize

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t\n ", []string{}},
		{"lowercases", "Great JOB", []string{"great", "job"}},
		{"strips punctuation", "wow!!! this, is... great?", []string{"wow", "this", "is", "great"}},
		{"joins contractions", "don't stop", []string{"dont", "stop"}},
		{"keeps underscores and digits", "run_5k 2day", []string{"run_5k", "2day"}},
		{"folds accents", "Café está increíble", []string{"cafe", "esta", "increible"}},
		{"drops punctuation-only tokens", "hello - world", []string{"hello", "world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Words(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFields(t *testing.T) {
	got := Fields("Hit the GYM, then eat!")
	want := []string{"hit", "the", "gym,", "then", "eat!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %#v, want %#v", got, want)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("naïve résumé"); got != "naive resume" {
		t.Errorf("Fold() = %q", got)
	}
}
