package toxicity

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"mercator-hq/vesta/pkg/moderation/tokenize"
)

// termMatcher finds whole-word occurrences of a fixed term list using an
// Aho-Corasick automaton built once at construction.
type termMatcher struct {
	machine *goahocorasick.Machine
}

func newTermMatcher(terms []string) (*termMatcher, error) {
	seen := make(map[string]struct{}, len(terms))
	patterns := make([][]rune, 0, len(terms))
	for _, term := range terms {
		n := strings.TrimSpace(string(normalize(term)))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		patterns = append(patterns, []rune(n))
	}

	if len(patterns) == 0 {
		return &termMatcher{}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &termMatcher{machine: m}, nil
}

// find returns the distinct terms present in text in order of first
// occurrence. text must come from normalize.
func (m *termMatcher) find(text []rune) []string {
	if m.machine == nil || len(text) == 0 {
		return nil
	}

	hits := m.machine.MultiPatternSearch(text, false)
	if len(hits) == 0 {
		return nil
	}

	type hit struct {
		pos  int
		term string
	}
	var found []hit
	seen := make(map[string]int)
	for _, h := range hits {
		end := h.Pos + len(h.Word)
		if h.Pos <= 0 || end >= len(text) {
			continue
		}
		if text[h.Pos-1] != ' ' || text[end] != ' ' {
			continue
		}
		term := string(h.Word)
		if i, ok := seen[term]; ok {
			if h.Pos < found[i].pos {
				found[i].pos = h.Pos
			}
			continue
		}
		seen[term] = len(found)
		found = append(found, hit{pos: h.Pos, term: term})
	}

	// insertion sort; hit lists are tiny
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].pos < found[j-1].pos; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.term
	}
	return out
}

// normalize prepares text for term matching. It lowercases, folds accents
// and leetspeak, and collapses every other run of non letter/digit runes
// into one space. The result starts and ends with a space so that word
// boundaries can be checked by index.
func normalize(text string) []rune {
	in := []rune(tokenize.Fold(text))
	out := make([]rune, 0, len(in)+2)
	out = append(out, ' ')

	for i, r := range in {
		r = unicode.ToLower(r)
		switch {
		case unicode.IsLetter(r):
		case unicode.IsDigit(r):
			r = foldDigit(r)
		case isLeetSymbol(r) && inWord(in, i):
			r = foldSymbol(r)
		default:
			r = ' '
		}
		if r == ' ' && out[len(out)-1] == ' ' {
			continue
		}
		out = append(out, r)
	}

	if out[len(out)-1] != ' ' {
		out = append(out, ' ')
	}
	return out
}

func foldDigit(r rune) rune {
	switch r {
	case '4':
		return 'a'
	case '3':
		return 'e'
	case '1':
		return 'i'
	case '0':
		return 'o'
	case '5':
		return 's'
	case '7':
		return 't'
	}
	return r
}

func isLeetSymbol(r rune) bool {
	switch r {
	case '@', '$', '!', '|', '€':
		return true
	}
	return false
}

func foldSymbol(r rune) rune {
	switch r {
	case '@':
		return 'a'
	case '$':
		return 's'
	case '!', '|':
		return 'i'
	case '€':
		return 'e'
	}
	return r
}

// inWord reports whether the symbol at i is surrounded by letters or digits,
// looking past neighbouring symbols, so "sh!t" and "a$$hole" fold while
// "idiot!!" and "@name" keep their punctuation.
func inWord(in []rune, i int) bool {
	return alnumBefore(in, i) && alnumAfter(in, i)
}

func alnumBefore(in []rune, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if isLeetSymbol(in[j]) {
			continue
		}
		return isAlnum(in[j])
	}
	return false
}

func alnumAfter(in []rune, i int) bool {
	for j := i + 1; j < len(in); j++ {
		if isLeetSymbol(in[j]) {
			continue
		}
		return isAlnum(in[j])
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
