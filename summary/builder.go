// Package summary finalizes a call session into a durable record, exactly
// once per call, and classifies what the call achieved.
package summary

import (
	"log"
	"strings"
	"sync"
	"time"

	"frontdesk/config"
	"frontdesk/session"
)

// Sink persists finalized records. Implemented by the store.
type Sink interface {
	AppendSummary(Record) error
}

// Builder produces one record per session. Finalize is idempotent: repeated
// calls for the same session return the first record without re-deriving or
// re-persisting it.
type Builder struct {
	cfg  *config.BusinessConfig
	sink Sink

	mu   sync.Mutex
	done map[string]*Record
}

// NewBuilder creates a builder that persists through sink. sink may be nil
// in tests.
func NewBuilder(cfg *config.BusinessConfig, sink Sink) *Builder {
	return &Builder{
		cfg:  cfg,
		sink: sink,
		done: make(map[string]*Record),
	}
}

// Finalize closes the session and produces its summary record. Safe to call
// from both the close-intent path and the disconnect path; whichever runs
// first wins, the other gets the same record back.
func (b *Builder) Finalize(s *session.CallSession) *Record {
	b.mu.Lock()
	if rec, ok := b.done[s.ID]; ok {
		b.mu.Unlock()
		return rec
	}
	b.mu.Unlock()

	first := s.Close()
	rec := b.build(s)

	b.mu.Lock()
	if existing, ok := b.done[s.ID]; ok {
		// lost the race against a concurrent finalize
		b.mu.Unlock()
		return existing
	}
	b.done[s.ID] = rec
	b.mu.Unlock()

	// The close latch guarantees a single persisting finalize even if the
	// cache was bypassed; a duplicate append is a contract violation worth
	// telling the operator about, never the caller.
	if first && b.sink != nil {
		if err := b.sink.AppendSummary(*rec); err != nil {
			log.Printf("❌ [%s] Failed to persist call summary: %v", shortID(s.ID), err)
		}
	}

	return rec
}

func (b *Builder) build(s *session.CallSession) *Record {
	answers := s.Answers()
	contact := s.Contact()
	topics := s.Topics()

	return &Record{
		SessionID: s.ID,
		Timestamp: time.Now(),
		Contact:   contact,
		Topics:    topics,
		Answers:   answers,
		Outcome:   b.deriveOutcome(s, answers, contact, topics),
		Notes:     strings.Join(s.Unhandled(), "; "),
		Lead:      ScoreLead(answers, len(b.cfg.Questions)),
	}
}

// deriveOutcome classifies the call. Evaluated in order, first match wins.
func (b *Builder) deriveOutcome(s *session.CallSession, answers, contact map[string]string, topics []string) session.Outcome {
	qualComplete := allQuestionsAnswered(b.cfg.Questions, answers)
	contactCaptured := anyRequiredContact(b.cfg, contact)

	switch {
	case qualComplete && contactCaptured:
		return session.OutcomeQualifiedLead
	case contactCaptured || b.callbackRequested(s):
		return session.OutcomeFollowUp
	case len(answers) == 0 && len(contact) == 0 && len(topics) > 0:
		return session.OutcomeFAQOnly
	default:
		return session.OutcomeUnresolved
	}
}

func allQuestionsAnswered(questions []config.Question, answers map[string]string) bool {
	if len(questions) == 0 {
		return false
	}
	for _, q := range questions {
		if _, ok := answers[q.Key]; !ok {
			return false
		}
	}
	return true
}

func anyRequiredContact(cfg *config.BusinessConfig, contact map[string]string) bool {
	for _, name := range cfg.RequiredContactFields() {
		if contact[name] != "" {
			return true
		}
	}
	return false
}

// callbackRequested scans caller turns for an explicit callback ask.
func (b *Builder) callbackRequested(s *session.CallSession) bool {
	markers := b.cfg.CallbackMarkers
	if len(markers) == 0 {
		return false
	}
	for _, turn := range s.Turns() {
		if turn.Role != session.RoleCaller {
			continue
		}
		lower := strings.ToLower(turn.Text)
		for _, m := range markers {
			if strings.Contains(lower, strings.ToLower(m)) {
				return true
			}
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
