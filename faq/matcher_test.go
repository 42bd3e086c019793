package faq

import (
	"testing"

	"frontdesk/config"
)

func testEntries() []config.FAQEntry {
	return []config.FAQEntry{
		{Question: "What are your hours?", Answer: "9-5 EST"},
		{Question: "Where are you located?", Answer: "Downtown Portland"},
		{Question: "Do you offer free consultations?", Answer: "Yes, the first consultation is free"},
	}
}

func TestMatchExactQuestion(t *testing.T) {
	m := NewMatcher(testEntries(), 0.5)

	for _, e := range testEntries() {
		got, ok := m.Match(e.Question)
		if !ok {
			t.Fatalf("exact question %q did not match", e.Question)
		}
		if got.Answer != e.Answer {
			t.Errorf("question %q matched %q, want %q", e.Question, got.Answer, e.Answer)
		}
	}
}

func TestMatchParaphrase(t *testing.T) {
	m := NewMatcher(testEntries(), 0.5)

	got, ok := m.Match("hey, what time are you open? what are your hours")
	if !ok {
		t.Fatal("paraphrased hours question did not match")
	}
	if got.Answer != "9-5 EST" {
		t.Errorf("got answer %q, want %q", got.Answer, "9-5 EST")
	}
}

func TestMatchNoHit(t *testing.T) {
	m := NewMatcher(testEntries(), 0.5)

	if _, ok := m.Match("my refrigerator is making a strange noise"); ok {
		t.Error("unrelated utterance should not match")
	}
}

func TestMatchEmptyConfig(t *testing.T) {
	m := NewMatcher(nil, 0.5)

	if _, ok := m.Match("what are your hours?"); ok {
		t.Error("empty FAQ config should never match")
	}
}

func TestMatchTieBreaksByConfigOrder(t *testing.T) {
	entries := []config.FAQEntry{
		{Question: "pricing", Answer: "first"},
		{Question: "pricing", Answer: "second"},
	}
	m := NewMatcher(entries, 0.5)

	got, ok := m.Match("tell me about pricing")
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Answer != "first" {
		t.Errorf("tie should resolve to earliest entry, got %q", got.Answer)
	}
}

func TestSearch(t *testing.T) {
	m := NewMatcher(testEntries(), 0.5)

	hits := m.Search("what are your hours?")
	if len(hits) == 0 {
		t.Fatal("expected at least one search hit")
	}
	if hits[0].Answer != "9-5 EST" {
		t.Errorf("best hit is %q, want %q", hits[0].Answer, "9-5 EST")
	}

	if hits := m.Search("zebra migration patterns"); len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}
