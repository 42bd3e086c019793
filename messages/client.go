package messages

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// ClientMessage represents a message from the transport client
type ClientMessage struct {
	Type    string          `json:"type"` // "transcript", "control"
	Payload json.RawMessage `json:"payload"`
}

// TranscriptPayload carries one transcribed caller utterance. Only final
// transcripts advance the conversation; interim ones are buffered.
type TranscriptPayload struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// ControlPayload contains control commands
type ControlPayload struct {
	Action string `json:"action"` // "ping", "end_call"
}

// Decode parses raw bytes into a ClientMessage.
func Decode(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodePayload parses a message payload into the given value.
func DecodePayload(msg *ClientMessage, v any) error {
	return sonic.Unmarshal(msg.Payload, v)
}
