package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/glebk/worklog-bot/internal/domain"
)

// SessionRepository implements domain.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new active session
func (r *SessionRepository) Create(ctx context.Context, session *domain.ActiveSession) error {
	query := `
		INSERT INTO active_sessions (owner_id, ping_frequency, minutes_to_ping)
		VALUES ($1, $2, $3)
		RETURNING id, started_at
	`

	row := r.db.QueryRowxContext(ctx, query, session.OwnerID, session.PingFrequency, session.MinutesToPing)
	if err := row.Scan(&session.ID, &session.StartedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByOwner retrieves the owner's active session, if any
func (r *SessionRepository) FindByOwner(ctx context.Context, ownerID int64) (*domain.ActiveSession, error) {
	var session domain.ActiveSession
	query := `
		SELECT id, owner_id, ping_frequency, minutes_to_ping, started_at
		FROM active_sessions
		WHERE owner_id = $1
	`

	err := r.db.GetContext(ctx, &session, query, ownerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM active_sessions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// IncrementCountdowns advances every session's ping countdown by one minute
func (r *SessionRepository) IncrementCountdowns(ctx context.Context) error {
	query := `UPDATE active_sessions SET minutes_to_ping = minutes_to_ping + 1`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to increment countdowns: %w", err)
	}
	return nil
}

// ListDue retrieves the sessions whose countdown has reached zero
func (r *SessionRepository) ListDue(ctx context.Context) ([]*domain.ActiveSession, error) {
	var sessions []*domain.ActiveSession
	query := `
		SELECT id, owner_id, ping_frequency, minutes_to_ping, started_at
		FROM active_sessions
		WHERE minutes_to_ping >= 0
		ORDER BY id
	`

	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list due sessions: %w", err)
	}
	return sessions, nil
}

// ResetCountdown rewinds a session's countdown to a full ping interval
func (r *SessionRepository) ResetCountdown(ctx context.Context, id int64, frequency int) error {
	query := `UPDATE active_sessions SET minutes_to_ping = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, -frequency, id); err != nil {
		return fmt.Errorf("failed to reset countdown: %w", err)
	}
	return nil
}
