// Package events decodes verified provider webhook bodies into a closed set of event variants.
package events

type Type string

const (
	TypeSessionStarted  Type = "call.session_started"
	TypeParticipantLeft Type = "call.session_participantLeft"
	TypeSessionEnded    Type = "call.session_ended"
	TypeTranscriptReady Type = "call.transcript_ready"
	TypeRecordingReady  Type = "call.recording_ready"
	TypeUnhandled       Type = "unhandled"
)

// Event is implemented only by the variants in this package.
type Event interface {
	Type() Type
	// Meeting returns the correlation key, or "" for Unhandled.
	Meeting() string
	isEvent()
}

type SessionStarted struct {
	MeetingID string
	SessionID string
}

type ParticipantLeft struct {
	MeetingID string
	CallCID   string
	UserID    string
}

type SessionEnded struct {
	MeetingID string
	SessionID string
}

type TranscriptReady struct {
	MeetingID     string
	TranscriptURL string
}

type RecordingReady struct {
	MeetingID    string
	RecordingURL string
}

// Unhandled is any well-formed body whose type is not one of the known variants.
type Unhandled struct {
	Name string
}

func (SessionStarted) Type() Type { return TypeSessionStarted }
func (ParticipantLeft) Type() Type { return TypeParticipantLeft }
func (SessionEnded) Type() Type { return TypeSessionEnded }
func (TranscriptReady) Type() Type { return TypeTranscriptReady }
func (RecordingReady) Type() Type { return TypeRecordingReady }
func (Unhandled) Type() Type { return TypeUnhandled }

func (e SessionStarted) Meeting() string { return e.MeetingID }
func (e ParticipantLeft) Meeting() string { return e.MeetingID }
func (e SessionEnded) Meeting() string { return e.MeetingID }
func (e TranscriptReady) Meeting() string { return e.MeetingID }
func (e RecordingReady) Meeting() string { return e.MeetingID }
func (Unhandled) Meeting() string { return "" }

func (SessionStarted) isEvent() {}
func (ParticipantLeft) isEvent() {}
func (SessionEnded) isEvent() {}
func (TranscriptReady) isEvent() {}
func (RecordingReady) isEvent() {}
func (Unhandled) isEvent() {}
