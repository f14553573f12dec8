package events

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/preetsinghmakkar/meetingsync/internal/apperr"
	"github.com/preetsinghmakkar/meetingsync/internal/dtos"
	"github.com/preetsinghmakkar/meetingsync/internal/utils"
)

var (
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrMissingMeetingID = errors.New("missing meetingId")
	ErrMissingURL       = errors.New("missing artifact url")
)

// Decode parses a verified webhook body. Unknown types decode to Unhandled.
// Every error returned is classified as apperr.MalformedInput.
func Decode(body []byte) (Event, error) {
	var envelope dtos.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperr.E(apperr.MalformedInput, "decode", ErrInvalidJSON)
	}

	switch Type(envelope.Type) {
	case TypeSessionStarted:
		var p dtos.CallSessionEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, malformed(envelope.Type, ErrInvalidJSON)
		}
		id := strings.TrimSpace(p.Call.Custom.MeetingID)
		if id == "" {
			return nil, malformed(envelope.Type, ErrMissingMeetingID)
		}
		return SessionStarted{MeetingID: id, SessionID: p.SessionID}, nil

	case TypeParticipantLeft:
		var p dtos.CallParticipantLeftEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, malformed(envelope.Type, ErrInvalidJSON)
		}
		id := utils.CallIDFromCID(p.CallCID)
		if id == "" {
			return nil, malformed(envelope.Type, ErrMissingMeetingID)
		}
		return ParticipantLeft{MeetingID: id, CallCID: p.CallCID, UserID: p.Participant.User.ID}, nil

	case TypeSessionEnded:
		var p dtos.CallSessionEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, malformed(envelope.Type, ErrInvalidJSON)
		}
		// some deliveries omit the custom data; the cid still names the call
		id := strings.TrimSpace(p.Call.Custom.MeetingID)
		if id == "" {
			id = utils.CallIDFromCID(p.CallCID)
		}
		if id == "" {
			return nil, malformed(envelope.Type, ErrMissingMeetingID)
		}
		return SessionEnded{MeetingID: id, SessionID: p.SessionID}, nil

	case TypeTranscriptReady:
		var p dtos.CallTranscriptionReadyEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, malformed(envelope.Type, ErrInvalidJSON)
		}
		id := utils.CallIDFromCID(p.CallCID)
		if id == "" {
			return nil, malformed(envelope.Type, ErrMissingMeetingID)
		}
		if p.CallTranscription.URL == "" {
			return nil, malformed(envelope.Type, ErrMissingURL)
		}
		return TranscriptReady{MeetingID: id, TranscriptURL: p.CallTranscription.URL}, nil

	case TypeRecordingReady:
		var p dtos.CallRecordingReadyEvent
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, malformed(envelope.Type, ErrInvalidJSON)
		}
		id := utils.CallIDFromCID(p.CallCID)
		if id == "" {
			return nil, malformed(envelope.Type, ErrMissingMeetingID)
		}
		if p.CallRecording.URL == "" {
			return nil, malformed(envelope.Type, ErrMissingURL)
		}
		return RecordingReady{MeetingID: id, RecordingURL: p.CallRecording.URL}, nil

	default:
		return Unhandled{Name: envelope.Type}, nil
	}
}

func malformed(eventType string, err error) error {
	return apperr.E(apperr.MalformedInput, "decode "+eventType, err)
}
