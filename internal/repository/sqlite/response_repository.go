package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/glebk/worklog-bot/internal/domain"
)

// ResponseRepository implements domain.ResponseRepository using SQLite
type ResponseRepository struct {
	db *Database
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *Database) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create stores a logged response
func (r *ResponseRepository) Create(ctx context.Context, response *domain.LoggedResponse) error {
	query := `
		INSERT INTO logged_responses (owner_id, text, created_at)
		VALUES (?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.GetDB().ExecContext(ctx, query,
		response.OwnerID,
		response.Text,
		now,
	)

	if err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get response ID: %w", err)
	}

	response.ID = id
	response.CreatedAt = now

	return nil
}

// ListByOwnerSince retrieves a user's responses logged at or after the given time
func (r *ResponseRepository) ListByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]*domain.LoggedResponse, error) {
	query := `
		SELECT id, owner_id, text, created_at
		FROM logged_responses
		WHERE owner_id = ? AND created_at >= ?
		ORDER BY created_at
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*domain.LoggedResponse

	for rows.Next() {
		response := &domain.LoggedResponse{}

		err := rows.Scan(
			&response.ID,
			&response.OwnerID,
			&response.Text,
			&response.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}

		responses = append(responses, response)
	}

	return responses, rows.Err()
}
