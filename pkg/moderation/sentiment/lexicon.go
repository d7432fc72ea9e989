package sentiment

import (
	"fmt"
	"sort"
)

// Lexicon holds the word sets used for scoring. All words are lowercase,
// accent-folded tokens as produced by tokenize.Words.
type Lexicon struct {
	Positive     []string
	Negative     []string
	Intensifiers []string
	Negators     []string
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"amazing", "awesome", "beautiful", "best", "brilliant", "congrats",
			"congratulations", "cool", "excellent", "excited", "fantastic", "glad",
			"good", "great", "happy", "helpful", "impressive", "incredible",
			"inspiring", "love", "loved", "motivated", "motivating", "nice",
			"perfect", "proud", "strong", "stunning", "superb", "thank", "thanks",
			"wonderful", "yay",
		},
		Negative: []string{
			"angry", "annoying", "awful", "bad", "boring", "disappointed",
			"disappointing", "disgusting", "dumb", "fail", "failure", "gross",
			"hate", "hated", "horrible", "lame", "lazy", "miserable", "pathetic",
			"poor", "sad", "stupid", "sucks", "terrible", "trash", "ugly",
			"useless", "weak", "worst", "wrong",
		},
		Intensifiers: []string{
			"absolutely", "completely", "extremely", "highly", "incredibly",
			"really", "so", "super", "totally", "truly", "very",
		},
		Negators: []string{
			"aint", "arent", "cant", "didnt", "doesnt", "dont", "isnt", "never",
			"no", "not", "wasnt", "wont",
		},
	}
}

type wordSet map[string]struct{}

func newWordSet(words []string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// overlap returns the sorted words present in both sets.
func overlap(a, b wordSet) []string {
	var out []string
	for w := range a {
		if b.has(w) {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks that positive/negative and intensifier/negator sets are
// disjoint.
func (l Lexicon) Validate() error {
	if both := overlap(newWordSet(l.Positive), newWordSet(l.Negative)); len(both) > 0 {
		return fmt.Errorf("words in both positive and negative lexicons: %v", both)
	}
	if both := overlap(newWordSet(l.Intensifiers), newWordSet(l.Negators)); len(both) > 0 {
		return fmt.Errorf("words in both intensifier and negator sets: %v", both)
	}
	return nil
}
