package content

import (
	"reflect"
	"testing"
)

func newTestAnalyzer(t *testing.T, cfg Config) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer() failed: %v", err)
	}
	return a
}

func TestMentions(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"hi @alice and @alice again @bob", []string{"alice", "bob"}},
		{"no mentions here", []string{}},
		{"", []string{}},
		{"@coach_mike @Coach_Mike", []string{"coach_mike", "Coach_Mike"}},
		{"lone @ sign", []string{}},
		{"@a,@b;@a", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Mentions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Mentions(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_Topics(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	tests := []struct {
		text string
		want []string
	}{
		{"", []string{}},
		{"great job!", []string{}},
		{"Crushed my WORKOUT at the gym", []string{"fitness"}},
		{"post-workout protein shake with my gym buddy", []string{"fitness", "nutrition", "social"}},
		{"so motivated by your progress", []string{"motivation"}},
		{"synced my Garmin after the marathon", []string{"sports", "technology"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := a.Topics(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Topics(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_CustomTopics(t *testing.T) {
	a := newTestAnalyzer(t, Config{Topics: map[string][]string{"pets": {" Dog ", ""}}})

	if got := a.Topics("my doggo ran with me"); !reflect.DeepEqual(got, []string{"pets"}) {
		t.Errorf("Topics() = %v, want [pets]", got)
	}
	if got := a.Topics("gym time"); len(got) != 0 {
		t.Errorf("Expected default topics to be replaced, got %v", got)
	}
}

func TestAnalyzer_Language(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty falls back", "", "en"},
		{"no stopwords falls back", "xyzzy qwerty", "en"},
		{"english", "the workout was great and I love it", "en"},
		{"spanish", "el entrenamiento de hoy fue muy bueno y me encanta", "es"},
		{"french", "je suis très content de cette séance avec vous", "fr"},
		{"german", "Ich bin sehr müde aber glücklich", "de"},
		{"portuguese", "eu não consigo parar, muito bom o treino", "pt"},
		{"italian", "questo allenamento è molto bello, non vedo l'ora", "it"},
		{"tie goes to precedence", "la", "es"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Language(tt.text); got != tt.want {
				t.Errorf("Language(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_LanguageFallback(t *testing.T) {
	a := newTestAnalyzer(t, Config{Fallback: "de"})
	if got := a.Language("xyzzy"); got != "de" {
		t.Errorf("Expected fallback de, got %q", got)
	}
	// a stopword match still wins over the fallback
	if got := a.Language("the end"); got != "en" {
		t.Errorf("Expected en, got %q", got)
	}
}

func TestAnalyzer_LanguageHybrid(t *testing.T) {
	strict := newTestAnalyzer(t, Config{Mode: LanguageHybrid, Fallback: "en", MinConfidence: 2})
	if got := strict.Language("Wunderschöne Bergwanderung heute gemacht"); got != "en" {
		t.Errorf("Expected fallback when confidence is unreachable, got %q", got)
	}

	loose := newTestAnalyzer(t, Config{Mode: LanguageHybrid, Fallback: "en", MinConfidence: 0})
	got := loose.Language("Wunderschöne Bergwanderung heute gemacht")
	if !IsSupportedLanguage(got) {
		t.Errorf("Expected a supported language, got %q", got)
	}

	// stopwords are still consulted first in hybrid mode
	if got := loose.Language("the end"); got != "en" {
		t.Errorf("Expected en, got %q", got)
	}
}

func TestNewAnalyzer_Invalid(t *testing.T) {
	if _, err := NewAnalyzer(Config{Mode: "neural"}); err == nil {
		t.Error("Expected error for unknown mode")
	}
	if _, err := NewAnalyzer(Config{Fallback: "xx"}); err == nil {
		t.Error("Expected error for unsupported fallback")
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(t, DefaultConfig())

	meta := a.Analyze("hi @alice and @alice again @bob, great workout")
	if !reflect.DeepEqual(meta.Mentions, []string{"alice", "bob"}) {
		t.Errorf("Mentions = %v", meta.Mentions)
	}
	if !reflect.DeepEqual(meta.Topics, []string{"fitness"}) {
		t.Errorf("Topics = %v", meta.Topics)
	}
	if meta.Language != "en" {
		t.Errorf("Language = %q", meta.Language)
	}
}
