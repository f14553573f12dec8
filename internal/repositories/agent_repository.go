package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/preetsinghmakkar/meetingsync/internal/models"
)

var ErrAgentNotFound = errors.New("agent not found")

type AgentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	const query = `
	INSERT INTO agents (id, name, user_id, instructions, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, agent.ID, agent.Name, agent.UserID, agent.Instructions, now); err != nil {
		return err
	}
	agent.CreatedAt = now
	agent.UpdatedAt = now
	return nil
}

// Get agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	const query = `
	SELECT
		id,
		name,
		user_id,
		instructions,
		created_at,
		updated_at
	FROM agents
	WHERE id = $1
	LIMIT 1
	`

	var agent models.Agent
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.UserID,
		&agent.Instructions,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &agent, nil
}
