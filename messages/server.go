package messages

import "github.com/bytedance/sonic"

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeSessionFailed  = "SESSION_FAILED"
	ErrCodeSessionEnded   = "SESSION_ENDED"
	ErrCodeLLMError       = "LLM_ERROR"
)

// Message types
const (
	TypeSay    = "say"
	TypeStatus = "status"
	TypeError  = "error"
)

// ServerMessage represents a message sent back over the transport
type ServerMessage struct {
	Type      string      `json:"type"` // "say", "status", "error"
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload"`
}

// SayPayload carries text the transport should speak to the caller
type SayPayload struct {
	Text string `json:"text"`
}

// StatusPayload contains status updates
type StatusPayload struct {
	Status  string `json:"status"` // "connected", "turn_complete", "closed"
	Message string `json:"message,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSayMessage creates a spoken-response message
func NewSayMessage(sessionID, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeSay,
		SessionID: sessionID,
		Payload: SayPayload{
			Text: text,
		},
	}
}

// NewStatusMessage creates a status message
func NewStatusMessage(sessionID, status, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeStatus,
		SessionID: sessionID,
		Payload: StatusPayload{
			Status:  status,
			Message: message,
		},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(sessionID, code, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// Encode marshals a server message for the wire.
func Encode(msg *ServerMessage) ([]byte, error) {
	return sonic.Marshal(msg)
}
