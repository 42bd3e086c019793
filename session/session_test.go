package session

import (
	"testing"
)

func TestAppendTurnOrder(t *testing.T) {
	s := New("s-1")

	texts := []string{"hello", "what are your hours?", "thanks"}
	for _, txt := range texts {
		if err := s.AppendTurn(RoleCaller, txt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	turns := s.Turns()
	if len(turns) != len(texts) {
		t.Fatalf("got %d turns, want %d", len(turns), len(texts))
	}
	for i, txt := range texts {
		if turns[i].Text != txt {
			t.Errorf("turn %d = %q, want %q", i, turns[i].Text, txt)
		}
	}
}

func TestAppendTurnAfterClose(t *testing.T) {
	s := New("s-2")
	s.Close()

	if err := s.AppendTurn(RoleCaller, "hello?"); err != ErrSessionClosed {
		t.Errorf("append after close = %v, want ErrSessionClosed", err)
	}
	if len(s.Turns()) != 0 {
		t.Error("closed session must not accept turns")
	}
}

func TestMergeFirstWins(t *testing.T) {
	s := New("s-3")

	if !s.SetContact("email", "jane@example.com", false) {
		t.Fatal("first value should be stored")
	}
	if s.SetContact("email", "other@example.com", false) {
		t.Error("second value without correction should be ignored")
	}
	if got := s.Contact()["email"]; got != "jane@example.com" {
		t.Errorf("email = %q, want first value", got)
	}
}

func TestMergeCorrectionOverrides(t *testing.T) {
	s := New("s-4")

	s.SetContact("phone", "1234567890", false)
	if !s.SetContact("phone", "+15551234567", true) {
		t.Fatal("correction should be stored")
	}
	if got := s.Contact()["phone"]; got != "+15551234567" {
		t.Errorf("phone = %q, want corrected value", got)
	}
}

func TestMergeRejectsEmpty(t *testing.T) {
	s := New("s-5")
	if s.SetContact("name", "", false) {
		t.Error("empty value should not be stored")
	}
}

func TestCloseLatchesOnce(t *testing.T) {
	s := New("s-6")

	if !s.Close() {
		t.Fatal("first close should report the transition")
	}
	if s.Close() {
		t.Error("second close should be a no-op")
	}
	if !s.Closed() {
		t.Error("session should report closed")
	}
	if s.State() != StateClosed {
		t.Errorf("state = %q, want closed", s.State())
	}
}

func TestMutationsRejectedAfterClose(t *testing.T) {
	s := New("s-7")
	s.SetContact("name", "Jane", false)
	s.Close()

	if s.SetContact("email", "jane@example.com", false) {
		t.Error("contact write after close should be rejected")
	}
	if s.SetAnswer("budget", "10k", true) {
		t.Error("answer write after close should be rejected")
	}
	s.AddTopic("hours")
	if len(s.Topics()) != 0 {
		t.Error("topic write after close should be rejected")
	}
}

func TestTopicsDeduplicated(t *testing.T) {
	s := New("s-8")
	s.AddTopic("hours")
	s.AddTopic("pricing")
	s.AddTopic("hours")

	topics := s.Topics()
	if len(topics) != 2 || topics[0] != "hours" || topics[1] != "pricing" {
		t.Errorf("topics = %v, want [hours pricing]", topics)
	}
}

func TestTranscriptBufferFlush(t *testing.T) {
	tb := NewTranscriptBuffer()

	if got := tb.Flush("just the final"); got != "just the final" {
		t.Errorf("flush without fragments = %q", got)
	}

	tb.Append("what are")
	tb.Append("your hours")
	if tb.IsEmpty() {
		t.Error("buffer should not be empty")
	}
	if got := tb.Flush("today?"); got != "what are your hours today?" {
		t.Errorf("flush = %q", got)
	}
	if !tb.IsEmpty() {
		t.Error("flush should clear the buffer")
	}

	// STT engines often resend the final text as the last interim fragment
	tb.Append("hello there")
	if got := tb.Flush("hello there"); got != "hello there" {
		t.Errorf("duplicate final = %q", got)
	}
}
