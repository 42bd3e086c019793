// Package dialogue decides, per caller turn, which conversational behavior
// governs the response: answering an FAQ, advancing the qualification
// questionnaire, or collecting contact details. A caller's question always
// takes priority over the agent's own agenda.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"frontdesk/config"
	"frontdesk/extract"
	"frontdesk/faq"
	"frontdesk/qualify"
	"frontdesk/session"
)

// maxRawAnswerWords caps how long a reply can be and still be accepted as a
// direct value for a pending free-text contact field.
const maxRawAnswerWords = 6

// TurnResult is what one caller turn produced.
type TurnResult struct {
	Replies []string // agent responses, in speaking order
	Closing bool     // the conversation should be finalized after replying
}

// Router is the per-turn state machine. It holds only configuration; all
// per-call state lives on the session, so a single router serves every call.
type Router struct {
	cfg       *config.BusinessConfig
	matcher   *faq.Matcher
	slots     *qualify.Slots
	extractor *extract.Extractor
}

// NewRouter wires the three behaviors behind the state machine.
func NewRouter(cfg *config.BusinessConfig, matcher *faq.Matcher, slots *qualify.Slots, extractor *extract.Extractor) *Router {
	return &Router{cfg: cfg, matcher: matcher, slots: slots, extractor: extractor}
}

// Greet opens the conversation. Called once per session, before any caller
// turn.
func (r *Router) Greet(s *session.CallSession) string {
	greeting := r.cfg.Greeting
	if s.State() == session.StateGreeting {
		_ = s.AppendTurn(session.RoleAgent, greeting)
		s.SetState(session.StateRouting)
	}
	return greeting
}

// HandleTurn processes one final caller utterance and returns the agent's
// response. Turns for one session must be submitted sequentially; the runner
// guarantees that.
func (r *Router) HandleTurn(ctx context.Context, s *session.CallSession, text string) (TurnResult, error) {
	if s.Closed() {
		return TurnResult{}, session.ErrSessionClosed
	}
	if err := s.AppendTurn(session.RoleCaller, text); err != nil {
		return TurnResult{}, err
	}

	// Callers volunteer contact details unprompted, so extraction runs on
	// every turn regardless of state.
	exRes := r.extractor.Extract(ctx, text, r.cfg.ContactFieldNames())
	captured := false
	for field, ex := range exRes.Fields {
		if s.SetContact(field, ex.Value, ex.Correction) {
			captured = true
		}
	}

	if r.isCloseIntent(text) {
		return r.close(s), nil
	}

	if entry, ok := r.matcher.Match(text); ok {
		s.SetState(session.StateFAQ)
		s.AddTopic(entry.Question)
		reply := r.reply(s, entry.Answer)
		s.SetState(session.StateRouting)
		return TurnResult{Replies: []string{reply}}, nil
	}

	// The caller's text answers whatever the agent last asked.
	if key := s.PendingQuestion(); key != "" {
		if err := r.slots.RecordAnswer(s, key, text); err == nil {
			captured = true
		}
		s.SetPendingQuestion("")
	} else if field := s.PendingField(); field != "" {
		if done, result := r.resolvePendingField(s, field, text, exRes); done {
			captured = true
		} else if result != nil {
			return *result, nil
		}
	}

	if !captured {
		s.NoteUnhandled(text)
	}

	return r.nextAgendaItem(s), nil
}

// resolvePendingField settles a contact field the agent asked for. Returns
// done=true when the field was captured, or a TurnResult when the agent
// should re-ask instead of moving on.
func (r *Router) resolvePendingField(s *session.CallSession, field, text string, exRes extract.Result) (bool, *TurnResult) {
	if _, ok := exRes.Fields[field]; ok {
		s.SetPendingField("")
		return true, nil
	}

	if _, ok := exRes.Invalid[field]; ok {
		// malformed value: ask the caller to repeat, keep the field pending
		reply := r.reply(s, fmt.Sprintf("Sorry, I didn't catch a valid %s. Could you repeat it?", field))
		return false, &TurnResult{Replies: []string{reply}}
	}

	// free-text fields without a pattern: take a short direct reply verbatim
	if isFreeTextField(field) {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" && len(strings.Fields(trimmed)) <= maxRawAnswerWords {
			if s.SetContact(field, trimmed, false) {
				s.SetPendingField("")
				return true, nil
			}
		}
	}
	return false, nil
}

// nextAgendaItem is the agent's own agenda, in priority order: finish the
// questionnaire, then fill missing required contact fields, then close.
func (r *Router) nextAgendaItem(s *session.CallSession) TurnResult {
	if q, ok := r.slots.NextUnanswered(s.Answers()); ok {
		s.SetState(session.StateQualification)
		reply := r.reply(s, q.Text)
		s.SetPendingQuestion(q.Key)
		s.SetState(session.StateRouting)
		return TurnResult{Replies: []string{reply}}
	}

	if field, ok := r.missingRequiredField(s); ok {
		s.SetState(session.StateContact)
		reply := r.reply(s, r.cfg.FieldPrompt(field))
		s.SetPendingField(field)
		s.SetState(session.StateRouting)
		return TurnResult{Replies: []string{reply}}
	}

	// nothing left to collect
	return r.close(s)
}

func (r *Router) close(s *session.CallSession) TurnResult {
	s.SetState(session.StateClosing)
	reply := r.reply(s, r.cfg.Closing)
	return TurnResult{Replies: []string{reply}, Closing: true}
}

func (r *Router) reply(s *session.CallSession, text string) string {
	_ = s.AppendTurn(session.RoleAgent, text)
	return text
}

func (r *Router) missingRequiredField(s *session.CallSession) (string, bool) {
	contact := s.Contact()
	for _, name := range r.cfg.RequiredContactFields() {
		if contact[name] == "" {
			return name, true
		}
	}
	return "", false
}

func (r *Router) isCloseIntent(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range r.cfg.CloseIntents {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func isFreeTextField(field string) bool {
	f := strings.ToLower(field)
	return !strings.Contains(f, "email") && !strings.Contains(f, "phone") && !strings.Contains(f, "number")
}
