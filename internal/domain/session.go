package domain

import (
	"context"
	"time"
)

// ActiveSession represents a working session in progress. A user has at most
// one; starting a new session replaces the old one. MinutesToPing counts up
// from -PingFrequency once per scheduler tick, so a session becomes due for
// a check-in ping when it reaches zero.
type ActiveSession struct {
	ID            int64     `db:"id"`
	OwnerID       int64     `db:"owner_id"`
	PingFrequency int       `db:"ping_frequency"`
	MinutesToPing int       `db:"minutes_to_ping"`
	StartedAt     time.Time `db:"started_at"`
}

// SessionRepository defines the interface for active session storage
type SessionRepository interface {
	Create(ctx context.Context, session *ActiveSession) error
	// FindByOwner returns the owner's active session, or (nil, nil) when
	// there is none.
	FindByOwner(ctx context.Context, ownerID int64) (*ActiveSession, error)
	Delete(ctx context.Context, id int64) error

	// Countdown methods, driven by the ping scheduler.
	IncrementCountdowns(ctx context.Context) error
	ListDue(ctx context.Context) ([]*ActiveSession, error)
	ResetCountdown(ctx context.Context, id int64, frequency int) error
}
