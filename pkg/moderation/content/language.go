package content

import (
	"github.com/abadojack/whatlanggo"

	"mercator-hq/vesta/pkg/moderation/tokenize"
)

// LanguageMode selects how the language is chosen when no stopword matches.
type LanguageMode string

const (
	// LanguageStopwords uses stopword voting only and falls back to the
	// configured fallback language.
	LanguageStopwords LanguageMode = "stopwords"

	// LanguageHybrid asks whatlanggo when stopword voting finds nothing.
	LanguageHybrid LanguageMode = "hybrid"
)

// stopwordList is one supported language. Words are accent-folded.
type stopwordList struct {
	code  string
	lang  whatlanggo.Lang
	words map[string]struct{}
}

// Supported languages in tie-break precedence order.
var languages = []stopwordList{
	newStopwordList("en", whatlanggo.Eng,
		"the", "and", "is", "are", "was", "were", "to", "of", "in", "it", "you",
		"that", "this", "for", "with", "on", "have", "be", "at", "my", "me",
		"we", "so", "but", "just", "what", "your", "i"),
	newStopwordList("es", whatlanggo.Spa,
		"el", "la", "los", "las", "de", "que", "y", "en", "un", "una", "es",
		"por", "con", "para", "muy", "pero", "mi", "lo", "se", "del", "al",
		"como", "mas", "esta", "estoy"),
	newStopwordList("fr", whatlanggo.Fra,
		"le", "la", "les", "de", "des", "et", "est", "un", "une", "je", "tu",
		"il", "elle", "nous", "vous", "pas", "pour", "dans", "avec", "qui",
		"tres", "mais", "sur", "ce", "du", "suis"),
	newStopwordList("de", whatlanggo.Deu,
		"der", "die", "das", "und", "ist", "nicht", "ich", "du", "ein", "eine",
		"zu", "mit", "auf", "fur", "sehr", "aber", "auch", "wir", "sie", "den",
		"dem", "bin"),
	newStopwordList("pt", whatlanggo.Por,
		"o", "os", "as", "um", "uma", "e", "que", "nao", "com", "para", "muito",
		"mas", "eu", "voce", "ele", "ela", "do", "da", "dos", "das", "no", "na",
		"em"),
	newStopwordList("it", whatlanggo.Ita,
		"il", "lo", "gli", "che", "e", "non", "un", "una", "per", "con", "sono",
		"sei", "molto", "ma", "io", "tu", "lui", "lei", "della", "nel",
		"questo"),
}

func newStopwordList(code string, lang whatlanggo.Lang, words ...string) stopwordList {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return stopwordList{code: code, lang: lang, words: set}
}

// SupportedLanguages returns the language codes in tie-break order.
func SupportedLanguages() []string {
	out := make([]string, len(languages))
	for i, l := range languages {
		out[i] = l.code
	}
	return out
}

// IsSupportedLanguage reports whether code is one of SupportedLanguages.
func IsSupportedLanguage(code string) bool {
	for _, l := range languages {
		if l.code == code {
			return true
		}
	}
	return false
}

// voteLanguage counts stopword hits per language. The highest count wins;
// ties go to the earlier language. It returns "" when nothing matched.
func voteLanguage(text string) string {
	words := tokenize.Words(text)

	best, bestCount := "", 0
	for _, l := range languages {
		n := 0
		for _, w := range words {
			if _, ok := l.words[w]; ok {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = l.code, n
		}
	}
	return best
}

var whatlangWhitelist = func() map[whatlanggo.Lang]bool {
	m := make(map[whatlanggo.Lang]bool, len(languages))
	for _, l := range languages {
		m[l.lang] = true
	}
	return m
}()

// detectStatistical asks whatlanggo, restricted to the supported languages.
// It returns "" when the detector is not confident enough.
func detectStatistical(text string, minConfidence float64) string {
	info := whatlanggo.DetectWithOptions(text, whatlanggo.Options{Whitelist: whatlangWhitelist})
	if info.Confidence < minConfidence {
		return ""
	}
	code := info.Lang.Iso6391()
	if !IsSupportedLanguage(code) {
		return ""
	}
	return code
}
