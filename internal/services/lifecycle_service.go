package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/apperr"
	"github.com/preetsinghmakkar/meetingsync/internal/events"
	"github.com/preetsinghmakkar/meetingsync/internal/metrics"
	"github.com/preetsinghmakkar/meetingsync/internal/models"
	"github.com/preetsinghmakkar/meetingsync/internal/repositories"
)

type MeetingStore interface {
	GetByID(ctx context.Context, id string) (*models.Meeting, error)
	CompareAndSetStatus(
		ctx context.Context,
		id string,
		expected []models.MeetingStatus,
		next models.MeetingStatus,
		fields models.TransitionFields,
	) (*models.Meeting, error)
	UpdateArtifacts(ctx context.Context, id string, fields models.ArtifactFields) (*models.Meeting, error)
}

type AgentStore interface {
	GetByID(ctx context.Context, id string) (*models.Agent, error)
}

// CallController ends provider calls on request.
type CallController interface {
	EndCall(ctx context.Context, callID string) error
}

// SessionLauncher binds agents to live calls. Launch must not block on the provider.
type SessionLauncher interface {
	Launch(meetingID string, agent models.Agent)
	Release(meetingID string)
}

type PostProcessor interface {
	Dispatch(ctx context.Context, meetingID, transcriptURL string) error
}

// Outcome describes what handling an event did.
type Outcome struct {
	Event     events.Type
	MeetingID string
	// Applied is false when the event was a safe no-op (ineligible status, unknown meeting for
	// a best-effort update, or an unhandled type).
	Applied bool
	// Upstream is a provider or queue failure that happened after local state was committed.
	// It never turns into a failed acknowledgement.
	Upstream error
}

var (
	// a start is accepted only from a status that has not started yet
	startableStatuses = models.StatusesExcept(
		models.MeetingStatusCompleted,
		models.MeetingStatusActive,
		models.MeetingStatusCancelled,
		models.MeetingStatusProcessing,
	)
	endableStatuses = []models.MeetingStatus{models.MeetingStatusActive}
)

// LifecycleService owns every status change of a meeting in response to provider events.
type LifecycleService struct {
	meetings        MeetingStore
	agents          AgentStore
	calls           CallController
	launcher        SessionLauncher
	postProcessor   PostProcessor
	upstreamTimeout time.Duration
	now             func() time.Time
	log             zerolog.Logger
}

func NewLifecycleService(
	meetings MeetingStore,
	agents AgentStore,
	calls CallController,
	launcher SessionLauncher,
	postProcessor PostProcessor,
	upstreamTimeout time.Duration,
	log zerolog.Logger,
) *LifecycleService {
	return &LifecycleService{
		meetings:        meetings,
		agents:          agents,
		calls:           calls,
		launcher:        launcher,
		postProcessor:   postProcessor,
		upstreamTimeout: upstreamTimeout,
		now:             func() time.Time { return time.Now().UTC() },
		log:             log.With().Str("component", "lifecycle").Logger(),
	}
}

// Handle applies ev. Returned errors are classified with apperr; upstream failures are
// reported through Outcome instead.
func (s *LifecycleService) Handle(ctx context.Context, ev events.Event) (Outcome, error) {
	switch e := ev.(type) {
	case events.SessionStarted:
		return s.sessionStarted(ctx, e)
	case events.ParticipantLeft:
		return s.participantLeft(ctx, e)
	case events.SessionEnded:
		return s.sessionEnded(ctx, e)
	case events.TranscriptReady:
		return s.transcriptReady(ctx, e)
	case events.RecordingReady:
		return s.recordingReady(ctx, e)
	case events.Unhandled:
		s.log.Debug().Str("type", e.Name).Msg("ignoring unhandled event type")
		return Outcome{Event: events.TypeUnhandled}, nil
	default:
		return Outcome{}, apperr.E(apperr.MalformedInput, "handle", errors.New("unsupported event"))
	}
}

func (s *LifecycleService) sessionStarted(ctx context.Context, e events.SessionStarted) (Outcome, error) {
	const op = "session_started"
	out := Outcome{Event: e.Type(), MeetingID: e.MeetingID}

	startedAt := s.now()
	meeting, err := s.meetings.CompareAndSetStatus(ctx, e.MeetingID, startableStatuses, models.MeetingStatusActive,
		models.TransitionFields{StartedAt: &startedAt})
	if errors.Is(err, repositories.ErrMeetingNotFound) {
		metrics.RecordTransition(string(models.MeetingStatusActive), false)
		return out, apperr.E(apperr.NotFound, op, err)
	}
	if err != nil {
		return out, apperr.E(apperr.Internal, op, err)
	}
	metrics.RecordTransition(string(models.MeetingStatusActive), true)
	out.Applied = true

	agent, err := s.agents.GetByID(ctx, meeting.AgentID)
	if errors.Is(err, repositories.ErrAgentNotFound) {
		// status is already active; surface the broken reference instead of rolling back
		s.log.Error().
			Str("meeting_id", meeting.ID).
			Str("agent_id", meeting.AgentID).
			Msg("meeting is active but its agent does not exist")
		return out, apperr.E(apperr.NotFound, op, err)
	}
	if err != nil {
		return out, apperr.E(apperr.Internal, op, err)
	}

	s.launcher.Launch(meeting.ID, *agent)

	s.log.Info().Str("meeting_id", meeting.ID).Str("agent_id", agent.ID).Msg("meeting active")
	return out, nil
}

func (s *LifecycleService) participantLeft(ctx context.Context, e events.ParticipantLeft) (Outcome, error) {
	out := Outcome{Event: e.Type(), MeetingID: e.MeetingID}

	callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	if err := s.calls.EndCall(callCtx, e.MeetingID); err != nil {
		metrics.RecordUpstreamFailure("end_call")
		out.Upstream = apperr.E(apperr.UpstreamFailure, "end_call", err)
		return out, nil
	}

	out.Applied = true
	s.log.Info().Str("meeting_id", e.MeetingID).Str("user_id", e.UserID).Msg("participant left, call end requested")
	return out, nil
}

func (s *LifecycleService) sessionEnded(ctx context.Context, e events.SessionEnded) (Outcome, error) {
	const op = "session_ended"
	out := Outcome{Event: e.Type(), MeetingID: e.MeetingID}

	// the agent has nothing left to join, whatever the stored status
	s.launcher.Release(e.MeetingID)

	endedAt := s.now()
	_, err := s.meetings.CompareAndSetStatus(ctx, e.MeetingID, endableStatuses, models.MeetingStatusProcessing,
		models.TransitionFields{EndedAt: &endedAt})
	if errors.Is(err, repositories.ErrMeetingNotFound) {
		metrics.RecordTransition(string(models.MeetingStatusProcessing), false)
		s.log.Debug().Str("meeting_id", e.MeetingID).Msg("session ended for a meeting that is not active")
		return out, nil
	}
	if err != nil {
		return out, apperr.E(apperr.Internal, op, err)
	}

	metrics.RecordTransition(string(models.MeetingStatusProcessing), true)
	out.Applied = true
	s.log.Info().Str("meeting_id", e.MeetingID).Msg("meeting processing")
	return out, nil
}

func (s *LifecycleService) transcriptReady(ctx context.Context, e events.TranscriptReady) (Outcome, error) {
	const op = "transcript_ready"
	out := Outcome{Event: e.Type(), MeetingID: e.MeetingID}

	url := e.TranscriptURL
	meeting, err := s.meetings.UpdateArtifacts(ctx, e.MeetingID, models.ArtifactFields{TranscriptURL: &url})
	if errors.Is(err, repositories.ErrMeetingNotFound) {
		return out, apperr.E(apperr.NotFound, op, err)
	}
	if err != nil {
		return out, apperr.E(apperr.Internal, op, err)
	}
	out.Applied = true

	transcriptURL := url
	if meeting.TranscriptURL != nil {
		transcriptURL = *meeting.TranscriptURL
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	if err := s.postProcessor.Dispatch(dispatchCtx, meeting.ID, transcriptURL); err != nil {
		metrics.RecordUpstreamFailure("enqueue")
		out.Upstream = apperr.E(apperr.UpstreamFailure, "enqueue", err)
	}
	return out, nil
}

func (s *LifecycleService) recordingReady(ctx context.Context, e events.RecordingReady) (Outcome, error) {
	out := Outcome{Event: e.Type(), MeetingID: e.MeetingID}

	url := e.RecordingURL
	_, err := s.meetings.UpdateArtifacts(ctx, e.MeetingID, models.ArtifactFields{RecordingURL: &url})
	if errors.Is(err, repositories.ErrMeetingNotFound) {
		s.log.Debug().Str("meeting_id", e.MeetingID).Msg("recording for unknown meeting dropped")
		return out, nil
	}
	if err != nil {
		return out, apperr.E(apperr.Internal, "recording_ready", err)
	}

	out.Applied = true
	return out, nil
}
