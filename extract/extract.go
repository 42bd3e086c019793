// Package extract pulls structured contact fields out of free-form caller
// text. Email and phone use deterministic recognition; free-text fields like
// name and company are suggested by the language model and then validated
// deterministically before anything is trusted into structured data.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"frontdesk/llm"

	"github.com/bytedance/sonic"
)

var (
	// ErrInvalidEmail is reported when an utterance carries something that
	// looks like an email attempt but fails the strict pattern.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPhone is reported when a digit run looks like a phone number
	// attempt but normalizes to fewer than 7 digits.
	ErrInvalidPhone = errors.New("invalid phone number")
)

var (
	emailPattern   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)
	phoneCandidate = regexp.MustCompile(`\+?[0-9][0-9().\s-]{3,}[0-9]`)
)

// Extraction is one recognized field value. Correction marks that the caller
// explicitly restated the value, which lets the session overwrite instead of
// keeping the first capture.
type Extraction struct {
	Value      string
	Correction bool
}

// Result carries everything one utterance yielded: confidently recognized
// fields, plus fields the caller attempted but got wrong (for a clarify
// re-ask rather than silent acceptance).
type Result struct {
	Fields  map[string]Extraction
	Invalid map[string]error
}

// Extractor recognizes contact fields in caller utterances.
type Extractor struct {
	markers   []string
	completer llm.Completer
}

// NewExtractor builds an extractor. completer may be nil, in which case
// free-text fields are only captured when a direct self-introduction pattern
// applies.
func NewExtractor(correctionMarkers []string, completer llm.Completer) *Extractor {
	markers := make([]string, 0, len(correctionMarkers))
	for _, m := range correctionMarkers {
		markers = append(markers, strings.ToLower(m))
	}
	return &Extractor{markers: markers, completer: completer}
}

// Extract recognizes the wanted fields in one utterance. Only fields it is
// confident about appear in Result.Fields; it never fabricates a value the
// utterance does not contain.
func (e *Extractor) Extract(ctx context.Context, utterance string, wanted []string) Result {
	res := Result{
		Fields:  make(map[string]Extraction),
		Invalid: make(map[string]error),
	}
	if strings.TrimSpace(utterance) == "" {
		return res
	}

	correction := e.hasCorrectionMarker(utterance)
	var freeText []string

	for _, field := range wanted {
		switch classify(field) {
		case kindEmail:
			value, err := findEmail(utterance)
			if err != nil {
				res.Invalid[field] = err
			} else if value != "" {
				res.Fields[field] = Extraction{Value: value, Correction: correction}
			}
		case kindPhone:
			value, err := findPhone(utterance)
			if err != nil {
				res.Invalid[field] = err
			} else if value != "" {
				res.Fields[field] = Extraction{Value: value, Correction: correction}
			}
		default:
			freeText = append(freeText, field)
		}
	}

	if len(freeText) > 0 {
		for field, value := range e.extractFreeText(ctx, utterance, freeText) {
			res.Fields[field] = Extraction{Value: value, Correction: correction}
		}
	}

	return res
}

func (e *Extractor) hasCorrectionMarker(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, m := range e.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

type fieldKind int

const (
	kindFree fieldKind = iota
	kindEmail
	kindPhone
)

func classify(field string) fieldKind {
	f := strings.ToLower(field)
	switch {
	case strings.Contains(f, "email"):
		return kindEmail
	case strings.Contains(f, "phone") || strings.Contains(f, "number"):
		return kindPhone
	default:
		return kindFree
	}
}

// findEmail scans whitespace tokens for a strict email match. A token that
// contains '@' but fails the pattern is an attempt worth clarifying.
func findEmail(utterance string) (string, error) {
	sawAttempt := false
	for _, tok := range strings.Fields(utterance) {
		tok = strings.Trim(tok, ".,;:!?\"'()")
		if !strings.Contains(tok, "@") {
			continue
		}
		if emailPattern.MatchString(tok) {
			return tok, nil
		}
		sawAttempt = true
	}
	if sawAttempt {
		return "", ErrInvalidEmail
	}
	return "", nil
}

// findPhone normalizes the longest digit sequence in the utterance to
// digits-with-optional-leading-plus. Sequences of 5-6 digits are treated as
// a failed phone attempt; shorter runs (quantities, years) are ignored.
func findPhone(utterance string) (string, error) {
	candidates := phoneCandidate.FindAllString(utterance, -1)
	best := ""
	bestDigits := 0
	for _, c := range candidates {
		normalized := NormalizePhone(c)
		n := len(strings.TrimPrefix(normalized, "+"))
		if n > bestDigits {
			best = normalized
			bestDigits = n
		}
	}

	if bestDigits >= 7 {
		return best, nil
	}
	if bestDigits >= 5 {
		return "", ErrInvalidPhone
	}
	return "", nil
}

// NormalizePhone strips formatting, keeping digits and a leading plus.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidPhone reports whether s normalizes to an acceptable phone number.
func ValidPhone(s string) bool {
	n := NormalizePhone(strings.TrimSpace(s))
	return len(strings.TrimPrefix(n, "+")) >= 7
}

// extractFreeText asks the language model for the wanted free-text fields,
// then keeps only values that actually occur in the utterance. Model output
// is an untrusted suggestion; anything it invented is dropped.
func (e *Extractor) extractFreeText(ctx context.Context, utterance string, fields []string) map[string]string {
	out := make(map[string]string)

	if e.completer == nil {
		return out
	}

	prompt := freeTextPrompt(utterance, fields)
	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		// extraction is opportunistic; a failed round-trip degrades the turn,
		// it never aborts it
		log.Printf("⚠️ Free-text extraction failed: %v", err)
		return out
	}

	suggested := make(map[string]string)
	if err := sonic.Unmarshal([]byte(stripFences(raw)), &suggested); err != nil {
		log.Printf("⚠️ Free-text extraction returned unparseable output: %q", raw)
		return out
	}

	lowerUtterance := strings.ToLower(utterance)
	for _, field := range fields {
		value := strings.TrimSpace(suggested[field])
		if value == "" || len(value) > 80 {
			continue
		}
		// the value must be present in what the caller actually said
		if !strings.Contains(lowerUtterance, strings.ToLower(value)) {
			continue
		}
		out[field] = value
	}
	return out
}

func freeTextPrompt(utterance string, fields []string) string {
	var b strings.Builder
	b.WriteString("You extract contact details from one caller utterance.\n")
	b.WriteString("Return ONLY a JSON object with these keys: ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(".\n")
	b.WriteString("Use the empty string for any field the utterance does not state explicitly. ")
	b.WriteString("Never guess or invent values.\n\n")
	fmt.Fprintf(&b, "Utterance: %q\n", utterance)
	return b.String()
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
