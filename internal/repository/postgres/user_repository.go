package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/glebk/worklog-bot/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user for (spaceID, userID), inserting it on first
// contact. The conflict clause makes concurrent calls for the same identity
// converge on a single row.
func (r *UserRepository) GetOrCreate(ctx context.Context, spaceID, userID string) (*domain.User, error) {
	insert := `
		INSERT INTO users (space_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (space_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, spaceID, userID); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var user domain.User
	query := `SELECT id, space_id, user_id, created_at FROM users WHERE space_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &user, query, spaceID, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, space_id, user_id, created_at FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
