// Package queue hands post-processing work to the external durable job queue.
// The obligation here ends once the queue has accepted the event.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is a named job with its data. ID lets consumers drop duplicates.
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"ts"`
}

type Sender interface {
	Send(ctx context.Context, event Event) error
}

// PostProcessingData is the payload of the transcript post-processing job
type PostProcessingData struct {
	MeetingID     string `json:"meetingId"`
	TranscriptURL string `json:"transcriptUrl"`
}

var ErrEmptyTranscript = errors.New("transcript url is required")

type Dispatcher struct {
	sender    Sender
	eventName string
	log       zerolog.Logger
}

func NewDispatcher(sender Sender, eventName string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		eventName: eventName,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch makes exactly one enqueue attempt for the transcript of meetingID.
func (d *Dispatcher) Dispatch(ctx context.Context, meetingID, transcriptURL string) error {
	if transcriptURL == "" {
		return ErrEmptyTranscript
	}

	event := Event{
		ID:   uuid.NewString(),
		Name: d.eventName,
		Data: PostProcessingData{
			MeetingID:     meetingID,
			TranscriptURL: transcriptURL,
		},
		Timestamp: time.Now().UnixMilli(),
	}

	if err := d.sender.Send(ctx, event); err != nil {
		return err
	}

	d.log.Info().
		Str("meeting_id", meetingID).
		Str("event_id", event.ID).
		Str("event", event.Name).
		Msg("post-processing enqueued")
	return nil
}
