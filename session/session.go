package session

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionClosed is returned when input arrives after finalization.
var ErrSessionClosed = errors.New("session is closed")

// Role identifies who produced a turn.
type Role string

const (
	RoleCaller Role = "caller"
	RoleAgent  Role = "agent"
)

// Turn is one utterance in the conversation. Turns are append-only and never
// mutated after append.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the dialogue router's position in the conversation.
type State string

const (
	StateGreeting      State = "greeting"
	StateRouting       State = "routing"
	StateFAQ           State = "faq_response"
	StateQualification State = "qualification"
	StateContact       State = "contact_collection"
	StateClosing       State = "closing"
	StateClosed        State = "closed"
)

// Outcome classifies what a finished call achieved.
type Outcome string

const (
	OutcomeUnresolved    Outcome = "unresolved"
	OutcomeFAQOnly       Outcome = "faq_only"
	OutcomeQualifiedLead Outcome = "qualified_lead"
	OutcomeFollowUp      Outcome = "follow_up_required"
)

// CallSession owns all mutable state for one live call. It is exclusively
// owned by that call's conversation handler; turns are processed one at a
// time, but accessors are still guarded because finalization can race a late
// disconnect.
type CallSession struct {
	ID        string
	StartedAt time.Time

	mu        sync.Mutex
	state     State
	turns     []Turn
	answers   map[string]string
	contact   map[string]string
	topics    []string
	topicSet  map[string]bool
	unhandled []string
	pendingQ  string // qualification question key awaiting an answer
	pendingF  string // contact field awaiting a value
	closed    bool

	LastActivity time.Time
}

// New creates a fresh session for one call.
func New(id string) *CallSession {
	now := time.Now()
	return &CallSession{
		ID:           id,
		StartedAt:    now,
		state:        StateGreeting,
		answers:      make(map[string]string),
		contact:      make(map[string]string),
		topicSet:     make(map[string]bool),
		LastActivity: now,
	}
}

// AppendTurn records one utterance. Rejected once the session is closed.
func (s *CallSession) AppendTurn(role Role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.turns = append(s.turns, Turn{Role: role, Text: text, Timestamp: time.Now()})
	s.LastActivity = time.Now()
	return nil
}

// Turns returns a copy of the turn log.
func (s *CallSession) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SetAnswer stores a qualification answer under key. The first answer wins;
// later values are ignored unless flagged as an explicit correction. Reports
// whether the value was stored.
func (s *CallSession) SetAnswer(key, value string, correction bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return merge(s.answers, key, value, correction)
}

// SetContact stores a contact field value under the same first-wins rule.
func (s *CallSession) SetContact(field, value string, correction bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return merge(s.contact, field, value, correction)
}

// merge is the single conflict-resolution point for collected data:
// first value wins, an explicit correction overwrites.
func merge(m map[string]string, key, value string, correction bool) bool {
	if value == "" {
		return false
	}
	if _, exists := m[key]; exists && !correction {
		return false
	}
	m[key] = value
	return true
}

// Answers returns a copy of the collected qualification answers.
func (s *CallSession) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMap(s.answers)
}

// Contact returns a copy of the collected contact fields.
func (s *CallSession) Contact() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMap(s.contact)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AddTopic records that an FAQ topic was discussed. Duplicates are ignored.
func (s *CallSession) AddTopic(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.topicSet[question] {
		return
	}
	s.topicSet[question] = true
	s.topics = append(s.topics, question)
}

// Topics returns discussed FAQ topics in the order first matched.
func (s *CallSession) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// NoteUnhandled remembers a caller statement nothing else captured, so the
// summary's notes can surface it.
func (s *CallSession) NoteUnhandled(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || text == "" {
		return
	}
	s.unhandled = append(s.unhandled, text)
}

// Unhandled returns caller statements not captured in structured fields.
func (s *CallSession) Unhandled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.unhandled))
	copy(out, s.unhandled)
	return out
}

// State returns the current dialogue state.
func (s *CallSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the dialogue to a new state. No-op once closed.
func (s *CallSession) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = st
}

// PendingQuestion returns the qualification question key the agent last
// asked, if any.
func (s *CallSession) PendingQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingQ
}

// SetPendingQuestion marks a question as awaiting the caller's answer.
func (s *CallSession) SetPendingQuestion(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingQ = key
}

// PendingField returns the contact field the agent last asked for, if any.
func (s *CallSession) PendingField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingF
}

// SetPendingField marks a contact field as awaiting the caller's value.
func (s *CallSession) SetPendingField(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingF = name
}

// Close latches the session shut. Returns true on the first call and false
// afterwards, so finalization happens exactly once.
func (s *CallSession) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.state = StateClosed
	return true
}

// Closed reports whether the session has been finalized.
func (s *CallSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
