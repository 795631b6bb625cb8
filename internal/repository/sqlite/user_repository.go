package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebk/worklog-bot/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite
type UserRepository struct {
	db *Database
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user for (spaceID, userID), inserting it on first
// contact. The conflict clause makes concurrent calls for the same identity
// converge on a single row.
func (r *UserRepository) GetOrCreate(ctx context.Context, spaceID, userID string) (*domain.User, error) {
	insert := `
		INSERT INTO users (space_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(space_id, user_id) DO NOTHING
	`

	if _, err := r.db.GetDB().ExecContext(ctx, insert, spaceID, userID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	query := `
		SELECT id, space_id, user_id, created_at
		FROM users
		WHERE space_id = ? AND user_id = ?
	`

	user := &domain.User{}
	err := r.db.GetDB().QueryRowContext(ctx, query, spaceID, userID).Scan(
		&user.ID,
		&user.SpaceID,
		&user.UserID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, space_id, user_id, created_at
		FROM users
		WHERE id = ?
	`

	user := &domain.User{}
	err := r.db.GetDB().QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.SpaceID,
		&user.UserID,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
