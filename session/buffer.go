package session

import (
	"strings"
	"sync"
)

// TranscriptBuffer accumulates interim transcript fragments until a final
// transcript arrives. Speech-to-text engines emit partial hypotheses; only
// the flushed, final text advances the dialogue.
type TranscriptBuffer struct {
	fragments []string
	mu        sync.Mutex
}

// NewTranscriptBuffer creates an empty buffer
func NewTranscriptBuffer() *TranscriptBuffer {
	return &TranscriptBuffer{}
}

// Append adds an interim fragment to the buffer
func (tb *TranscriptBuffer) Append(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.fragments = append(tb.fragments, fragment)
}

// Flush joins buffered fragments with the final text and clears the buffer.
// Returns the complete utterance.
func (tb *TranscriptBuffer) Flush(final string) string {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	final = strings.TrimSpace(final)
	if len(tb.fragments) == 0 {
		return final
	}

	parts := tb.fragments
	if final != "" && (len(parts) == 0 || parts[len(parts)-1] != final) {
		parts = append(parts, final)
	}
	joined := strings.Join(parts, " ")

	tb.fragments = nil
	return joined
}

// Clear empties the buffer without returning data
func (tb *TranscriptBuffer) Clear() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.fragments = nil
}

// IsEmpty returns true if no fragments are buffered
func (tb *TranscriptBuffer) IsEmpty() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.fragments) == 0
}
