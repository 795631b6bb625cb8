package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebk/worklog-bot/internal/domain"
)

// SessionRepository implements domain.SessionRepository using SQLite
type SessionRepository struct {
	db *Database
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *Database) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new active session
func (r *SessionRepository) Create(ctx context.Context, session *domain.ActiveSession) error {
	query := `
		INSERT INTO active_sessions (owner_id, ping_frequency, minutes_to_ping, started_at)
		VALUES (?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.GetDB().ExecContext(ctx, query,
		session.OwnerID,
		session.PingFrequency,
		session.MinutesToPing,
		now,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session ID: %w", err)
	}

	session.ID = id
	session.StartedAt = now

	return nil
}

// FindByOwner retrieves the owner's active session, if any
func (r *SessionRepository) FindByOwner(ctx context.Context, ownerID int64) (*domain.ActiveSession, error) {
	query := `
		SELECT id, owner_id, ping_frequency, minutes_to_ping, started_at
		FROM active_sessions
		WHERE owner_id = ?
	`

	session := &domain.ActiveSession{}
	err := r.db.GetDB().QueryRowContext(ctx, query, ownerID).Scan(
		&session.ID,
		&session.OwnerID,
		&session.PingFrequency,
		&session.MinutesToPing,
		&session.StartedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM active_sessions WHERE id = ?`

	_, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// IncrementCountdowns advances every session's ping countdown by one minute
func (r *SessionRepository) IncrementCountdowns(ctx context.Context) error {
	query := `UPDATE active_sessions SET minutes_to_ping = minutes_to_ping + 1`

	_, err := r.db.GetDB().ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to increment countdowns: %w", err)
	}

	return nil
}

// ListDue retrieves the sessions whose countdown has reached zero
func (r *SessionRepository) ListDue(ctx context.Context) ([]*domain.ActiveSession, error) {
	query := `
		SELECT id, owner_id, ping_frequency, minutes_to_ping, started_at
		FROM active_sessions
		WHERE minutes_to_ping >= 0
		ORDER BY id
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list due sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ActiveSession

	for rows.Next() {
		session := &domain.ActiveSession{}

		err := rows.Scan(
			&session.ID,
			&session.OwnerID,
			&session.PingFrequency,
			&session.MinutesToPing,
			&session.StartedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// ResetCountdown rewinds a session's countdown to a full ping interval
func (r *SessionRepository) ResetCountdown(ctx context.Context, id int64, frequency int) error {
	query := `UPDATE active_sessions SET minutes_to_ping = ? WHERE id = ?`

	_, err := r.db.GetDB().ExecContext(ctx, query, -frequency, id)
	if err != nil {
		return fmt.Errorf("failed to reset countdown: %w", err)
	}

	return nil
}
