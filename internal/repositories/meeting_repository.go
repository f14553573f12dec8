package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/preetsinghmakkar/meetingsync/internal/models"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrNoStatuses      = errors.New("at least one expected status is required")
)

const meetingColumns = `
		id,
		name,
		user_id,
		agent_id,
		status,
		started_at,
		ended_at,
		transcript_url,
		recording_url,
		created_at,
		updated_at`

type MeetingRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.UserID,
		&m.AgentID,
		&m.Status,
		&m.StartedAt,
		&m.EndedAt,
		&m.TranscriptURL,
		&m.RecordingURL,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new meeting. An empty status defaults to upcoming.
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	const query = `
	INSERT INTO meetings (
		id,
		name,
		user_id,
		agent_id,
		status,
		created_at,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	if meeting.Status == "" {
		meeting.Status = models.MeetingStatusUpcoming
	}
	now := r.now()

	if _, err := r.db.ExecContext(
		ctx,
		query,
		meeting.ID,
		meeting.Name,
		meeting.UserID,
		meeting.AgentID,
		string(meeting.Status),
		now,
	); err != nil {
		return err
	}

	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	return nil
}

// Get meeting by ID
func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := `SELECT` + meetingColumns + `
	FROM meetings
	WHERE id = $1
	LIMIT 1
	`

	return scanMeeting(r.db.QueryRowContext(ctx, query, id))
}

// CompareAndSetStatus moves a meeting to next only if its current status is one of expected,
// stamping fields in the same statement. It returns the updated row, or ErrMeetingNotFound
// when no meeting with id is currently in an expected status.
//
// StartedAt and EndedAt are only written when still NULL, and EndedAt never precedes StartedAt.
func (r *MeetingRepository) CompareAndSetStatus(
	ctx context.Context,
	id string,
	expected []models.MeetingStatus,
	next models.MeetingStatus,
	fields models.TransitionFields,
) (*models.Meeting, error) {
	if len(expected) == 0 {
		return nil, ErrNoStatuses
	}

	args := []any{string(next), r.now(), id}
	set := []string{"status = $1", "updated_at = $2"}

	if fields.StartedAt != nil {
		args = append(args, *fields.StartedAt)
		set = append(set, fmt.Sprintf("started_at = COALESCE(started_at, $%d)", len(args)))
	}
	if fields.EndedAt != nil {
		args = append(args, *fields.EndedAt)
		n := len(args)
		set = append(set, fmt.Sprintf(
			"ended_at = COALESCE(ended_at, CASE WHEN started_at IS NOT NULL AND started_at > $%d THEN started_at ELSE $%d END)",
			n, n,
		))
	}

	placeholders := make([]string, len(expected))
	for i, s := range expected {
		args = append(args, string(s))
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := `
	UPDATE meetings
	SET ` + strings.Join(set, ", ") + `
	WHERE id = $3 AND status IN (` + strings.Join(placeholders, ", ") + `)
	RETURNING` + meetingColumns

	return scanMeeting(r.db.QueryRowContext(ctx, query, args...))
}

// UpdateArtifacts writes artifact URLs regardless of status and returns the updated row.
// Returns ErrMeetingNotFound when no meeting has id.
func (r *MeetingRepository) UpdateArtifacts(ctx context.Context, id string, fields models.ArtifactFields) (*models.Meeting, error) {
	if fields.Empty() {
		return r.GetByID(ctx, id)
	}

	args := []any{r.now(), id}
	set := []string{"updated_at = $1"}

	if fields.TranscriptURL != nil {
		args = append(args, *fields.TranscriptURL)
		set = append(set, fmt.Sprintf("transcript_url = $%d", len(args)))
	}
	if fields.RecordingURL != nil {
		args = append(args, *fields.RecordingURL)
		set = append(set, fmt.Sprintf("recording_url = $%d", len(args)))
	}

	query := `
	UPDATE meetings
	SET ` + strings.Join(set, ", ") + `
	WHERE id = $2
	RETURNING` + meetingColumns

	return scanMeeting(r.db.QueryRowContext(ctx, query, args...))
}
