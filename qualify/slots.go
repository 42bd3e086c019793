// Package qualify advances the configured lead-qualification questionnaire.
// Questions are asked in configuration order and each is answered at most
// once; answer text is stored verbatim with no semantic validation.
package qualify

import (
	"errors"
	"strings"

	"frontdesk/config"
	"frontdesk/session"
)

var (
	// ErrUnknownQuestion is returned for answer keys not in the configuration.
	ErrUnknownQuestion = errors.New("unknown qualification question")
	// ErrEmptyAnswer is returned when the answer text is blank.
	ErrEmptyAnswer = errors.New("empty answer")
)

// Slots tracks the configured question list. It holds no per-call state;
// progress lives on the session.
type Slots struct {
	questions []config.Question
	keys      map[string]bool
}

// NewSlots builds a slot filler from the configured question list.
func NewSlots(questions []config.Question) *Slots {
	keys := make(map[string]bool, len(questions))
	for _, q := range questions {
		keys[q.Key] = true
	}
	return &Slots{questions: questions, keys: keys}
}

// NextUnanswered returns the first configured question whose key is absent
// from answers, or false once the questionnaire is complete.
func (sl *Slots) NextUnanswered(answers map[string]string) (config.Question, bool) {
	for _, q := range sl.questions {
		if _, done := answers[q.Key]; !done {
			return q, true
		}
	}
	return config.Question{}, false
}

// Complete reports whether every configured question has an answer.
func (sl *Slots) Complete(answers map[string]string) bool {
	_, remaining := sl.NextUnanswered(answers)
	return !remaining
}

// Count returns the number of configured questions.
func (sl *Slots) Count() int {
	return len(sl.questions)
}

// RecordAnswer stores the raw caller text under the question key. Rejects
// unknown keys, blank text, and closed sessions without mutating anything.
func (sl *Slots) RecordAnswer(s *session.CallSession, key, raw string) error {
	if !sl.keys[key] {
		return ErrUnknownQuestion
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyAnswer
	}
	if !s.SetAnswer(key, raw, false) {
		if s.Closed() {
			return session.ErrSessionClosed
		}
		// already answered, first answer wins
		return nil
	}
	return nil
}
