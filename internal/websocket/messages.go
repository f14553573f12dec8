package websocket

// Message is the envelope for everything exchanged on a realtime agent connection
type Message struct {
	Type    string         `json:"type"`
	Session *SessionConfig `json:"session,omitempty"`
	Error   *ErrorPayload  `json:"error,omitempty"`
}

// SessionConfig is the agent behaviour bound to the session
type SessionConfig struct {
	Instructions string `json:"instructions"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	MessageTypeSessionUpdate  = "session.update"
	MessageTypeSessionUpdated = "session.updated"
	MessageTypeError          = "error"
)

func sessionUpdate(instructions string) Message {
	return Message{
		Type:    MessageTypeSessionUpdate,
		Session: &SessionConfig{Instructions: instructions},
	}
}
