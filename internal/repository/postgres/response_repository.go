package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/glebk/worklog-bot/internal/domain"
)

// ResponseRepository implements domain.ResponseRepository using PostgreSQL
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create stores a logged response
func (r *ResponseRepository) Create(ctx context.Context, response *domain.LoggedResponse) error {
	query := `
		INSERT INTO logged_responses (owner_id, text)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, response.OwnerID, response.Text)
	if err := row.Scan(&response.ID, &response.CreatedAt); err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

// ListByOwnerSince retrieves a user's responses logged at or after the given time
func (r *ResponseRepository) ListByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]*domain.LoggedResponse, error) {
	var responses []*domain.LoggedResponse
	query := `
		SELECT id, owner_id, text, created_at
		FROM logged_responses
		WHERE owner_id = $1 AND created_at >= $2
		ORDER BY created_at
	`

	if err := r.db.SelectContext(ctx, &responses, query, ownerID, since); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}
