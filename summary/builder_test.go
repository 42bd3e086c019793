package summary

import (
	"errors"
	"sync"
	"testing"

	"frontdesk/config"
	"frontdesk/session"
)

type recordingSink struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (rs *recordingSink) AppendSummary(rec Record) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.err != nil {
		return rs.err
	}
	rs.records = append(rs.records, rec)
	return nil
}

func testConfig() *config.BusinessConfig {
	cfg := config.DefaultBusinessConfig()
	cfg.Questions = []config.Question{
		{Key: "business_type", Text: "What type of business do you have?"},
		{Key: "budget", Text: "What is your budget range?"},
	}
	cfg.ContactFields = []config.ContactField{
		{Name: "name"},
		{Name: "email", Required: true},
		{Name: "phone", Required: true},
	}
	return cfg
}

func TestFinalizeIdempotent(t *testing.T) {
	sink := &recordingSink{}
	b := NewBuilder(testConfig(), sink)
	s := session.New("f-1")
	s.AppendTurn(session.RoleCaller, "hello")

	first := b.Finalize(s)
	second := b.Finalize(s)

	if first != second {
		t.Error("repeated finalize should return the identical record")
	}
	if len(sink.records) != 1 {
		t.Fatalf("persisted %d records, want exactly 1", len(sink.records))
	}
	if !s.Closed() {
		t.Error("finalize should close the session")
	}
}

func TestFinalizeConcurrent(t *testing.T) {
	sink := &recordingSink{}
	b := NewBuilder(testConfig(), sink)
	s := session.New("f-2")

	var wg sync.WaitGroup
	records := make([]*Record, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i] = b.Finalize(s)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(records); i++ {
		if records[i] != records[0] {
			t.Fatal("concurrent finalize calls returned different records")
		}
	}
	if len(sink.records) != 1 {
		t.Errorf("persisted %d records under concurrency, want 1", len(sink.records))
	}
}

func TestOutcomeQualifiedLead(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-3")
	s.SetAnswer("business_type", "bakery", false)
	s.SetAnswer("budget", "10k", false)
	s.SetContact("email", "jane@example.com", false)

	rec := b.Finalize(s)
	if rec.Outcome != session.OutcomeQualifiedLead {
		t.Errorf("outcome = %q, want qualified_lead", rec.Outcome)
	}
	if !rec.Lead.Qualified || rec.Lead.Score != 100 {
		t.Errorf("lead = %+v, want qualified with score 100", rec.Lead)
	}
}

func TestOutcomeFollowUpPartialQualification(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-4")
	s.SetAnswer("business_type", "bakery", false)
	s.SetContact("phone", "1234567890", false)

	rec := b.Finalize(s)
	if rec.Outcome != session.OutcomeFollowUp {
		t.Errorf("outcome = %q, want follow_up_required", rec.Outcome)
	}
}

func TestOutcomeFollowUpCallbackRequest(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-5")
	s.AppendTurn(session.RoleCaller, "just call me back tomorrow please")

	rec := b.Finalize(s)
	if rec.Outcome != session.OutcomeFollowUp {
		t.Errorf("outcome = %q, want follow_up_required for callback request", rec.Outcome)
	}
}

func TestOutcomeFAQOnly(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-6")
	s.AddTopic("What are your hours?")

	rec := b.Finalize(s)
	if rec.Outcome != session.OutcomeFAQOnly {
		t.Errorf("outcome = %q, want faq_only", rec.Outcome)
	}
}

func TestOutcomeUnresolved(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-7")
	s.AppendTurn(session.RoleCaller, "I think I have the wrong number")

	rec := b.Finalize(s)
	if rec.Outcome != session.OutcomeUnresolved {
		t.Errorf("outcome = %q, want unresolved", rec.Outcome)
	}
}

func TestNotesFromUnhandledStatements(t *testing.T) {
	b := NewBuilder(testConfig(), nil)
	s := session.New("f-8")
	s.NoteUnhandled("my cousin recommended you")
	s.NoteUnhandled("I also need help with signage")

	rec := b.Finalize(s)
	want := "my cousin recommended you; I also need help with signage"
	if rec.Notes != want {
		t.Errorf("notes = %q, want %q", rec.Notes, want)
	}
}

func TestFinalizeSurvivesSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	b := NewBuilder(testConfig(), sink)
	s := session.New("f-9")

	rec := b.Finalize(s)
	if rec == nil {
		t.Fatal("finalize must still return a record when persistence fails")
	}
	if b.Finalize(s) != rec {
		t.Error("idempotence must hold even after a persistence failure")
	}
}

func TestScoreLead(t *testing.T) {
	tests := []struct {
		answered  int
		total     int
		score     int
		priority  string
		qualified bool
	}{
		{0, 4, 0, "low", false},
		{1, 4, 25, "low", false},
		{2, 4, 50, "medium", true},
		{3, 4, 75, "high", true},
		{4, 4, 100, "high", true},
		{0, 0, 0, "low", false},
	}
	for _, tt := range tests {
		answers := make(map[string]string, tt.answered)
		for i := 0; i < tt.answered; i++ {
			answers[string(rune('a'+i))] = "x"
		}
		got := ScoreLead(answers, tt.total)
		if got.Score != tt.score || got.Priority != tt.priority || got.Qualified != tt.qualified {
			t.Errorf("ScoreLead(%d/%d) = %+v, want score=%d priority=%s qualified=%v",
				tt.answered, tt.total, got, tt.score, tt.priority, tt.qualified)
		}
	}
}
