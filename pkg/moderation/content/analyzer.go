package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/tokenize"
)

// mentionPattern matches an @handle; the handle is the first group.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Config controls language detection.
type Config struct {
	// Mode is LanguageStopwords or LanguageHybrid.
	// Default: "stopwords"
	Mode LanguageMode

	// Fallback is returned when no language can be determined.
	// Default: "en"
	Fallback string

	// MinConfidence is the whatlanggo confidence required in hybrid mode.
	// Default: 0.5
	MinConfidence float64

	// Topics overrides DefaultTopics when non-nil.
	Topics map[string][]string
}

// DefaultConfig returns stopword-only detection with an English fallback.
func DefaultConfig() Config {
	return Config{
		Mode:          LanguageStopwords,
		Fallback:      "en",
		MinConfidence: 0.5,
	}
}

type topic struct {
	name     string
	keywords []string
}

// Analyzer extracts topics, mentions and language. It holds only read-only
// tables and is safe for concurrent use.
type Analyzer struct {
	config Config
	topics []topic
}

// NewAnalyzer validates cfg and builds the topic table.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.Mode == "" {
		cfg.Mode = LanguageStopwords
	}
	if cfg.Mode != LanguageStopwords && cfg.Mode != LanguageHybrid {
		return nil, fmt.Errorf("unknown language mode %q", cfg.Mode)
	}
	if cfg.Fallback == "" {
		cfg.Fallback = languages[0].code
	}
	if !IsSupportedLanguage(cfg.Fallback) {
		return nil, fmt.Errorf("unsupported fallback language %q (supported: %s)",
			cfg.Fallback, strings.Join(SupportedLanguages(), ", "))
	}

	src := cfg.Topics
	if src == nil {
		src = DefaultTopics()
	}
	topics := make([]topic, 0, len(src))
	for name, keywords := range src {
		kw := make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		topics = append(topics, topic{name: name, keywords: kw})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].name < topics[j].name })

	return &Analyzer{config: cfg, topics: topics}, nil
}

// Analyze returns the content metadata for text.
func (a *Analyzer) Analyze(text string) moderation.ContentMetadata {
	return moderation.ContentMetadata{
		Topics:   a.Topics(text),
		Mentions: Mentions(text),
		Language: a.Language(text),
	}
}

// Topics returns the sorted topic tags whose keywords appear inside any
// token of text.
func (a *Analyzer) Topics(text string) []string {
	out := []string{}
	tokens := tokenize.Fields(text)
	if len(tokens) == 0 {
		return out
	}
	for _, t := range a.topics {
		if containsAny(tokens, t.keywords) {
			out = append(out, t.name)
		}
	}
	return out
}

func containsAny(tokens, keywords []string) bool {
	for _, k := range keywords {
		for _, tok := range tokens {
			if strings.Contains(tok, k) {
				return true
			}
		}
	}
	return false
}

// Mentions returns @handles without the '@', deduplicated in first-seen order.
func Mentions(text string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		handle := m[1]
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		out = append(out, handle)
	}
	return out
}

// Language returns the ISO 639-1 code for text.
func (a *Analyzer) Language(text string) string {
	if code := voteLanguage(text); code != "" {
		return code
	}
	if a.config.Mode == LanguageHybrid && strings.TrimSpace(text) != "" {
		if code := detectStatistical(text, a.config.MinConfidence); code != "" {
			return code
		}
	}
	return a.config.Fallback
}
