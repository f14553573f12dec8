package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/preetsinghmakkar/meetingsync/internal/repositories"
)

type jobInserter interface {
	Insert(ctx context.Context, job *repositories.Job) error
}

// DatabaseSender writes events to the jobs outbox table for a worker to claim.
type DatabaseSender struct {
	jobs jobInserter
}

func NewDatabaseSender(jobs *repositories.JobRepository) *DatabaseSender {
	return &DatabaseSender{jobs: jobs}
}

func (s *DatabaseSender) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	job := &repositories.Job{
		ID:        event.ID,
		Name:      event.Name,
		Payload:   payload,
		CreatedAt: time.UnixMilli(event.Timestamp).UTC(),
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return fmt.Errorf("inserting job %s: %w", event.Name, err)
	}
	return nil
}
