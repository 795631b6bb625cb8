package domain

import (
	"context"
	"time"
)

// LoggedResponse represents one piece of work a user reported during a
// session. The text is stored exactly as the user typed it.
type LoggedResponse struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// ResponseRepository defines the interface for logged response storage
type ResponseRepository interface {
	Create(ctx context.Context, response *LoggedResponse) error
	ListByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]*LoggedResponse, error)
}
