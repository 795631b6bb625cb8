package domain

import (
	"context"
	"time"
)

// User represents a person in a chat space. The same person talking to the
// bot from two different spaces is two distinct users.
type User struct {
	ID        int64     `db:"id"`
	SpaceID   string    `db:"space_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// GetOrCreate returns the user identified by (spaceID, userID),
	// creating it first if it does not exist. Safe to call concurrently
	// for the same identity; exactly one row ever exists per identity.
	GetOrCreate(ctx context.Context, spaceID, userID string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
