package toxicity

import (
	"fmt"
	"regexp"
)

// SpamPattern is one spam signal category. Every match adds 0.2 to the
// spam score.
type SpamPattern struct {
	Name    string
	Pattern string
}

// Catalog is the static data the detector is built from.
type Catalog struct {
	// Severe holds hate speech and extreme terms.
	Severe []string

	// Moderate holds profanity, self-harm incitement and harassment phrasing.
	Moderate []string

	// Spam holds URL, domain and promotional phrase patterns.
	Spam []SpamPattern
}

// DefaultCatalog returns the built-in term and pattern lists.
func DefaultCatalog() Catalog {
	return Catalog{
		Severe: []string{
			"subhuman",
			"untermensch",
			"heil hitler",
			"sieg heil",
			"white power",
			"white genocide",
			"ethnic cleansing",
			"race traitor",
			"gas the jews",
			"go back to your country",
			"exterminate them",
			"kill all of them",
		},
		Moderate: []string{
			// profanity
			"fuck", "fucking", "fucker", "motherfucker", "shit", "bullshit",
			"bitch", "asshole", "bastard", "dickhead", "wtf", "stfu",
			// self-harm incitement
			"kill yourself", "kys", "go die", "hope you die", "end yourself",
			"drink bleach",
			// harassment
			"stupid person", "idiot", "moron", "loser", "dumbass", "shut up",
			"you suck", "nobody likes you", "worthless", "fat pig", "ugly cow",
		},
		Spam: []SpamPattern{
			{Name: "url", Pattern: `(?i)(?:https?://|www\.)\S+`},
			{Name: "domain", Pattern: `(?i)\b[a-z0-9][a-z0-9-]*\.(?:com|net|org|io|co|biz|info|xyz|ru|ly|me|shop|site|online)\b`},
			{Name: "buy_now", Pattern: `(?i)\bbuy now\b`},
			{Name: "click_here", Pattern: `(?i)\bclick here\b`},
			{Name: "follow_me", Pattern: `(?i)\bfollow me\b`},
			{Name: "check_out_my", Pattern: `(?i)\bcheck out my\b`},
			{Name: "dm_me", Pattern: `(?i)\bdm me\b`},
			{Name: "link_in_bio", Pattern: `(?i)\blink in (?:my )?bio\b`},
			{Name: "free_money", Pattern: `(?i)\bfree (?:money|followers|gift)\b`},
			{Name: "limited_offer", Pattern: `(?i)\blimited (?:time )?offer\b`},
			{Name: "act_now", Pattern: `(?i)\bact now\b`},
			{Name: "make_money", Pattern: `(?i)\b(?:make|earn) \$?\d+`},
			{Name: "subscribe", Pattern: `(?i)\bsubscribe to my\b`},
		},
	}
}

// WithExtraTerms returns a copy of c with additional severe and moderate
// terms appended.
func (c Catalog) WithExtraTerms(severe, moderate []string) Catalog {
	out := c
	out.Severe = append(append([]string(nil), c.Severe...), severe...)
	out.Moderate = append(append([]string(nil), c.Moderate...), moderate...)
	return out
}

type compiledSpamPattern struct {
	name string
	re   *regexp.Regexp
}

func compileSpamPatterns(patterns []SpamPattern) ([]compiledSpamPattern, error) {
	out := make([]compiledSpamPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("spam pattern %q: %w", p.Name, err)
		}
		out = append(out, compiledSpamPattern{name: p.Name, re: re})
	}
	return out, nil
}
