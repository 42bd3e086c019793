package store

import (
	"errors"
	"testing"
	"time"
)

func testConsult(at time.Time) *Consult {
	return &Consult{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+11234567890",
		ScheduledAt: at,
	}
}

func TestCreateAndGetConsult(t *testing.T) {
	s := newTestStore(t)

	c := testConsult(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	if err := s.CreateConsult(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Fatal("create did not assign an ID")
	}
	if c.Status != ConsultPending {
		t.Errorf("status = %q, want %q", c.Status, ConsultPending)
	}
	if c.DurationMinutes != defaultConsultMinutes {
		t.Errorf("duration = %d, want default %d", c.DurationMinutes, defaultConsultMinutes)
	}

	got, err := s.GetConsult(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "jane@example.com" || !got.ScheduledAt.Equal(c.ScheduledAt) {
		t.Errorf("got %+v", got)
	}
}

func TestCreateConsultValidation(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		c    *Consult
	}{
		{"missing name", &Consult{Email: "jane@example.com", Phone: "555", ScheduledAt: at}},
		{"bad email", &Consult{Name: "Jane", Email: "jane@@example", Phone: "555", ScheduledAt: at}},
		{"missing phone", &Consult{Name: "Jane", Email: "jane@example.com", ScheduledAt: at}},
		{"missing date", &Consult{Name: "Jane", Email: "jane@example.com", Phone: "555"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.CreateConsult(tc.c); !errors.Is(err, ErrConsultInvalid) {
				t.Errorf("err = %v, want ErrConsultInvalid", err)
			}
		})
	}
}

func TestCreateConsultConflict(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	if err := s.CreateConsult(testConsult(at)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Overlaps the first booking's 30-minute window.
	err := s.CreateConsult(testConsult(at.Add(15 * time.Minute)))
	if !errors.Is(err, ErrConsultConflict) {
		t.Errorf("overlapping create err = %v, want ErrConsultConflict", err)
	}

	// Back to back is fine.
	if err := s.CreateConsult(testConsult(at.Add(30 * time.Minute))); err != nil {
		t.Errorf("adjacent create: %v", err)
	}
}

func TestCancelledConsultFreesSlot(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	first := testConsult(at)
	if err := s.CreateConsult(first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateConsultStatus(first.ID, ConsultCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := s.CreateConsult(testConsult(at)); err != nil {
		t.Errorf("rebook cancelled slot: %v", err)
	}
}

func TestUpdateConsultStatus(t *testing.T) {
	s := newTestStore(t)

	c := testConsult(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	if err := s.CreateConsult(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateConsultStatus(c.ID, ConsultConfirmed); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetConsult(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ConsultConfirmed {
		t.Errorf("status = %q, want %q", got.Status, ConsultConfirmed)
	}

	if err := s.UpdateConsultStatus("missing", ConsultConfirmed); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}
