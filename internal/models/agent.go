package models

import "time"

// Agent is the AI participant bound to a meeting. Read-only here.
type Agent struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	UserID       string `db:"user_id"`
	Instructions string `db:"instructions"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
