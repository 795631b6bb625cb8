// Package scheduler drives the periodic check-in pings for running sessions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/glebk/worklog-bot/internal/domain"
)

// PingMessage is the check-in question sent when a session's interval elapses.
const PingMessage = "What have you been working on? Reply here and I'll log it."

// Notifier delivers a message to a user outside the request/reply cycle.
type Notifier interface {
	Notify(ctx context.Context, user *domain.User, text string) error
}

// Pinger advances every active session's countdown once per tick and pings
// the owners whose interval has elapsed.
type Pinger struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger
}

// NewPinger creates a Pinger
func NewPinger(sessions domain.SessionRepository, users domain.UserRepository, notifier Notifier, interval time.Duration, log zerolog.Logger) *Pinger {
	return &Pinger{
		sessions: sessions,
		users:    users,
		notifier: notifier,
		interval: interval,
		log:      log,
	}
}

// Start runs ping passes on the configured interval until the context is
// canceled.
func (p *Pinger) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.log.Error().Err(err).Msg("ping pass failed")
			}
		}
	}
}

// RunOnce performs a single ping pass: step every countdown, then ping the
// sessions that came due. A countdown is only rewound after its ping went
// out, so a failed delivery is retried on the next pass.
func (p *Pinger) RunOnce(ctx context.Context) error {
	if err := p.sessions.IncrementCountdowns(ctx); err != nil {
		return fmt.Errorf("advance countdowns: %w", err)
	}

	due, err := p.sessions.ListDue(ctx)
	if err != nil {
		return fmt.Errorf("list due sessions: %w", err)
	}

	for _, session := range due {
		user, err := p.users.GetByID(ctx, session.OwnerID)
		if err != nil {
			p.log.Warn().Err(err).Int64("owner_id", session.OwnerID).Msg("owner lookup failed")
			continue
		}
		if user == nil {
			p.log.Warn().Int64("owner_id", session.OwnerID).Msg("session without owner")
			continue
		}

		if err := p.notifier.Notify(ctx, user, PingMessage); err != nil {
			p.log.Warn().Err(err).Int64("user_id", user.ID).Msg("check-in ping failed")
			continue
		}

		if err := p.sessions.ResetCountdown(ctx, session.ID, session.PingFrequency); err != nil {
			p.log.Error().Err(err).Int64("session_id", session.ID).Msg("countdown reset failed")
		}
	}

	return nil
}
