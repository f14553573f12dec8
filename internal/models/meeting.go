package models

import "time"

type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// AllMeetingStatuses lists every status in lifecycle order.
var AllMeetingStatuses = []MeetingStatus{
	MeetingStatusUpcoming,
	MeetingStatusActive,
	MeetingStatusProcessing,
	MeetingStatusCompleted,
	MeetingStatusCancelled,
}

func (s MeetingStatus) Valid() bool {
	for _, known := range AllMeetingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusesExcept returns every status not present in excluded, keeping lifecycle order.
func StatusesExcept(excluded ...MeetingStatus) []MeetingStatus {
	out := make([]MeetingStatus, 0, len(AllMeetingStatuses))
	for _, s := range AllMeetingStatuses {
		skip := false
		for _, e := range excluded {
			if s == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, s)
		}
	}
	return out
}

type Meeting struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	UserID  string `db:"user_id"`
	AgentID string `db:"agent_id"`

	Status MeetingStatus `db:"status"`

	StartedAt *time.Time `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`

	TranscriptURL *string `db:"transcript_url"`
	RecordingURL  *string `db:"recording_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TransitionFields are the columns a status transition may stamp alongside the new status.
// Nil fields are left untouched.
type TransitionFields struct {
	StartedAt *time.Time
	EndedAt   *time.Time
}

// ArtifactFields are provider-hosted artifact locations. Nil fields are left untouched.
type ArtifactFields struct {
	TranscriptURL *string
	RecordingURL  *string
}

func (f ArtifactFields) Empty() bool {
	return f.TranscriptURL == nil && f.RecordingURL == nil
}
