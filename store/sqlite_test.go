package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"frontdesk/session"
	"frontdesk/summary"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(sessionID string) summary.Record {
	return summary.Record{
		SessionID: sessionID,
		Timestamp: time.Now(),
		Contact: map[string]string{
			"name":  "Jane Doe",
			"email": "jane@example.com",
		},
		Topics:  []string{"What are your hours?"},
		Answers: map[string]string{"budget": "10k"},
		Outcome: session.OutcomeQualifiedLead,
		Notes:   "asked about signage too",
		Lead:    summary.LeadScore{Score: 100, MaxScore: 100, Priority: "high", Qualified: true},
	}
}

func TestAppendAndGetSummary(t *testing.T) {
	s := newTestStore(t)

	rec := testRecord("st-1")
	if err := s.AppendSummary(rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.GetSummary("st-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Contact["email"] != "jane@example.com" {
		t.Errorf("contact email = %q", got.Contact["email"])
	}
	if got.Outcome != session.OutcomeQualifiedLead {
		t.Errorf("outcome = %q", got.Outcome)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "What are your hours?" {
		t.Errorf("topics = %v", got.Topics)
	}
	if !got.Lead.Qualified || got.Lead.Score != 100 {
		t.Errorf("lead = %+v", got.Lead)
	}
}

func TestAppendDuplicateRejected(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendSummary(testRecord("st-2")); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := s.AppendSummary(testRecord("st-2"))
	if !errors.Is(err, ErrDuplicateSummary) {
		t.Errorf("second append error = %v, want ErrDuplicateSummary", err)
	}

	records, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestConcurrentAppendDistinctSessions(t *testing.T) {
	s := newTestStore(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.AppendSummary(testRecord(string(rune('a' + i))))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("append %d: %v", i, err)
		}
	}
	records, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != n {
		t.Errorf("got %d records, want %d", len(records), n)
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSummary("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
