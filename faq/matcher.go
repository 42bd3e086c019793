// Package faq matches caller utterances against the configured FAQ list
// using lexical token overlap. Matching is deterministic: ties are broken by
// configuration order.
package faq

import (
	"strings"
	"unicode"

	"frontdesk/config"
)

// Entry is one configured FAQ with its position in the config file.
type Entry struct {
	Question string
	Answer   string
}

// words too common to carry meaning for overlap scoring
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "am": true,
	"do": true, "does": true, "did": true, "you": true, "your": true,
	"i": true, "my": true, "me": true, "we": true, "our": true, "it": true,
	"what": true, "whats": true, "how": true, "when": true, "where": true,
	"can": true, "could": true, "would": true, "will": true, "to": true,
	"of": true, "for": true, "in": true, "on": true, "and": true, "or": true,
	"please": true, "tell": true, "about": true,
}

// Matcher scores utterances against a fixed FAQ set. It is pure: no state
// changes after construction.
type Matcher struct {
	entries  []Entry
	tokens   [][]string
	minScore float64
}

// NewMatcher builds a matcher from the configured entries. minScore is the
// minimum confidence in (0, 1] an entry must reach to be returned.
func NewMatcher(entries []config.FAQEntry, minScore float64) *Matcher {
	m := &Matcher{minScore: minScore}
	for _, e := range entries {
		toks := tokenize(e.Question)
		if len(toks) == 0 {
			// a question made entirely of stopwords can still match verbatim
			toks = rawTokens(e.Question)
		}
		m.entries = append(m.entries, Entry{Question: e.Question, Answer: e.Answer})
		m.tokens = append(m.tokens, toks)
	}
	return m
}

// Match returns the best entry above the confidence threshold, or false if no
// entry clears it. Safe to call with an empty FAQ configuration.
func (m *Matcher) Match(utterance string) (Entry, bool) {
	best := -1
	bestScore := 0.0

	utTokens := tokenSet(tokenize(utterance))
	utRaw := tokenSet(rawTokens(utterance))

	for i := range m.entries {
		score := overlapScore(m.tokens[i], utTokens, utRaw)
		// strict greater-than keeps the earliest configured entry on ties
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 || bestScore < m.minScore {
		return Entry{}, false
	}
	return m.entries[best], true
}

// Search returns every entry whose score clears the threshold, best first.
// It backs the web-facing FAQ search endpoint and uses the same scoring as
// Match.
func (m *Matcher) Search(query string) []Entry {
	type scored struct {
		entry Entry
		score float64
	}

	utTokens := tokenSet(tokenize(query))
	utRaw := tokenSet(rawTokens(query))

	var hits []scored
	for i := range m.entries {
		score := overlapScore(m.tokens[i], utTokens, utRaw)
		if score >= m.minScore {
			hits = append(hits, scored{m.entries[i], score})
		}
	}

	// insertion sort by score, stable so config order breaks ties
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].score > hits[j-1].score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out
}

// overlapScore is the fraction of the question's tokens present in the
// utterance. An exact restatement of the configured question scores 1.0.
func overlapScore(question []string, utterance, utteranceRaw map[string]bool) float64 {
	if len(question) == 0 {
		return 0
	}
	matched := 0
	for _, tok := range question {
		if utterance[tok] || utteranceRaw[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(question))
}

func tokenize(s string) []string {
	var out []string
	for _, tok := range rawTokens(s) {
		if !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

func rawTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
