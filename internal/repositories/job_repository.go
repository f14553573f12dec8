package repositories

import (
	"context"
	"database/sql"
	"time"
)

const JobStatusPending = "pending"

// Job is a row of the post-processing outbox. Payload is a JSON document.
type Job struct {
	ID        string
	Name      string
	Payload   []byte
	Status    string
	CreatedAt time.Time
}

// JobRepository persists outbox jobs for an external worker to claim.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Insert a pending job. Re-inserting an existing id is a no-op.
func (r *JobRepository) Insert(ctx context.Context, job *Job) error {
	const query = `
	INSERT INTO jobs (id, name, payload, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING
	`

	if job.Status == "" {
		job.Status = JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query, job.ID, job.Name, string(job.Payload), job.Status, job.CreatedAt)
	return err
}

// ListPending returns pending jobs with name, oldest first.
func (r *JobRepository) ListPending(ctx context.Context, name string, limit int) ([]Job, error) {
	const query = `
	SELECT id, name, payload, status, created_at
	FROM jobs
	WHERE name = $1 AND status = $2
	ORDER BY created_at ASC
	LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, name, JobStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		var payload string
		if err := rows.Scan(&job.ID, &job.Name, &payload, &job.Status, &job.CreatedAt); err != nil {
			return nil, err
		}
		job.Payload = []byte(payload)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
