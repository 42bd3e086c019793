package extract

import (
	"context"
	"errors"
	"testing"
)

// fakeCompleter returns a canned response, or an error when response is "".
type fakeCompleter struct {
	response string
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.response == "" {
		return "", errors.New("model down")
	}
	return f.response, nil
}

func defaultMarkers() []string {
	return []string{"actually", "i meant", "sorry, it's", "no, it's"}
}

func TestExtractEmail(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	res := e.Extract(context.Background(), "sure, it's jane@example.com, thanks", []string{"email"})
	got, ok := res.Fields["email"]
	if !ok {
		t.Fatal("email not extracted")
	}
	if got.Value != "jane@example.com" {
		t.Errorf("email = %q", got.Value)
	}
	if got.Correction {
		t.Error("no correction marker present")
	}
}

func TestExtractEmailRejectsMalformed(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	res := e.Extract(context.Background(), "my email is jane@@example", []string{"email"})
	if _, ok := res.Fields["email"]; ok {
		t.Fatal("malformed email must not be extracted")
	}
	if !errors.Is(res.Invalid["email"], ErrInvalidEmail) {
		t.Errorf("invalid = %v, want ErrInvalidEmail", res.Invalid["email"])
	}
}

func TestExtractPhoneNormalization(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	tests := []struct {
		utterance string
		want      string
	}{
		{"you can reach me at (123) 456-7890", "1234567890"},
		{"it's +11234567890", "+11234567890"},
		{"call 555.867.5309 anytime", "5558675309"},
	}
	for _, tt := range tests {
		res := e.Extract(context.Background(), tt.utterance, []string{"phone"})
		got, ok := res.Fields["phone"]
		if !ok {
			t.Errorf("%q: phone not extracted", tt.utterance)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("%q: phone = %q, want %q", tt.utterance, got.Value, tt.want)
		}
	}
}

func TestExtractPhoneTooShort(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	res := e.Extract(context.Background(), "my number is 12345", []string{"phone"})
	if _, ok := res.Fields["phone"]; ok {
		t.Fatal("5-digit number must not be extracted")
	}
	if !errors.Is(res.Invalid["phone"], ErrInvalidPhone) {
		t.Errorf("invalid = %v, want ErrInvalidPhone", res.Invalid["phone"])
	}
}

func TestExtractIgnoresSmallNumbers(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	res := e.Extract(context.Background(), "we have 12 employees and opened in 2019", []string{"phone"})
	if _, ok := res.Fields["phone"]; ok {
		t.Error("quantities and years must not be mistaken for a phone number")
	}
	if _, ok := res.Invalid["phone"]; ok {
		t.Error("short digit runs are not a phone attempt")
	}
}

func TestExtractCorrectionMarker(t *testing.T) {
	e := NewExtractor(defaultMarkers(), nil)

	res := e.Extract(context.Background(), "actually it's jane.doe@example.com", []string{"email"})
	got, ok := res.Fields["email"]
	if !ok {
		t.Fatal("email not extracted")
	}
	if !got.Correction {
		t.Error("correction marker should flag the extraction")
	}
}

func TestExtractFreeTextValidatedAgainstUtterance(t *testing.T) {
	// model suggests one value present in the utterance and invents another
	fc := &fakeCompleter{response: `{"name": "Jane Doe", "company": "Globex"}`}
	e := NewExtractor(defaultMarkers(), fc)

	res := e.Extract(context.Background(), "hi, this is Jane Doe from Acme", []string{"name", "company"})
	if got := res.Fields["name"].Value; got != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", got)
	}
	if _, ok := res.Fields["company"]; ok {
		t.Error("fabricated company value must be dropped")
	}
}

func TestExtractFreeTextModelFailureDegrades(t *testing.T) {
	fc := &fakeCompleter{}
	e := NewExtractor(defaultMarkers(), fc)

	res := e.Extract(context.Background(), "this is Jane", []string{"name"})
	if len(res.Fields) != 0 {
		t.Error("model failure should yield no free-text fields, not an error")
	}
	if fc.calls != 1 {
		t.Errorf("completer called %d times, want 1 (retry lives in the llm client)", fc.calls)
	}
}

func TestExtractSkipsLLMWhenNoFreeTextWanted(t *testing.T) {
	fc := &fakeCompleter{response: `{}`}
	e := NewExtractor(defaultMarkers(), fc)

	e.Extract(context.Background(), "it's jane@example.com", []string{"email", "phone"})
	if fc.calls != 0 {
		t.Errorf("completer called %d times for deterministic fields, want 0", fc.calls)
	}
}

func TestValidators(t *testing.T) {
	if !ValidEmail("jane@example.com") {
		t.Error("jane@example.com should be valid")
	}
	if ValidEmail("jane@@example") {
		t.Error("jane@@example should be invalid")
	}
	if !ValidPhone("(123) 456-7890") {
		t.Error("(123) 456-7890 should be valid")
	}
	if ValidPhone("12345") {
		t.Error("12345 should be invalid")
	}
}
