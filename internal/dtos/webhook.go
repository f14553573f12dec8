package dtos

// WebhookEnvelope is the part shared by every provider webhook body
type WebhookEnvelope struct {
	Type      string `json:"type"`
	CallCID   string `json:"call_cid"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CallCustom carries the application data attached to a call at creation
type CallCustom struct {
	MeetingID string `json:"meetingId"`
}

type CallResponse struct {
	CID    string     `json:"cid"`
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Custom CallCustom `json:"custom"`
}

// call.session_started / call.session_ended
type CallSessionEvent struct {
	WebhookEnvelope
	SessionID string       `json:"session_id"`
	Call      CallResponse `json:"call"`
}

type CallParticipant struct {
	UserSessionID string `json:"user_session_id"`
	User          struct {
		ID string `json:"id"`
	} `json:"user"`
}

// call.session_participantLeft
type CallParticipantLeftEvent struct {
	WebhookEnvelope
	SessionID   string          `json:"session_id"`
	Participant CallParticipant `json:"participant"`
}

type CallTranscription struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// call.transcript_ready
type CallTranscriptionReadyEvent struct {
	WebhookEnvelope
	CallTranscription CallTranscription `json:"call_transcription"`
}

type CallRecording struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// call.recording_ready
type CallRecordingReadyEvent struct {
	WebhookEnvelope
	CallRecording CallRecording `json:"call_recording"`
}

// Webhook acknowledgements
type WebhookOKResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
