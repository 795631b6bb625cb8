package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/glebk/worklog-bot/internal/domain"
	"github.com/glebk/worklog-bot/internal/export"
)

// Reply templates for session lifecycle events. These are part of the bot's
// conversational contract, so change them with care.
const (
	ReplySessionBegin   = `Working session has begun! To end the session, say "stop"`
	ReplySessionEnd     = "Working session has ended! See a summary of your work here: %s"
	ReplyNoSession      = "I can't believe you've done this"
	ReplyResponseLogged = "Response has been logged!"
)

// SessionService handles business logic for working sessions
type SessionService struct {
	sessionRepo  domain.SessionRepository
	responseRepo domain.ResponseRepository
	exporter     export.SummaryExporter
	locks        *userLocks
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo domain.SessionRepository, responseRepo domain.ResponseRepository, exporter export.SummaryExporter, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		responseRepo: responseRepo,
		exporter:     exporter,
		locks:        newUserLocks(),
		log:          log,
	}
}

// StartSession begins a working session for the user. Any session already in
// progress is discarded and replaced; its logged responses stay in storage.
func (s *SessionService) StartSession(ctx context.Context, user *domain.User, frequency int) (string, error) {
	mu := s.locks.forUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.sessionRepo.FindByOwner(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check active session: %w", err)
	}
	if existing != nil {
		if err := s.sessionRepo.Delete(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("failed to replace session: %w", err)
		}
	}

	// Seeding the countdown at -frequency makes the first check-in ping
	// fire a full interval after the start.
	session := &domain.ActiveSession{
		OwnerID:       user.ID,
		PingFrequency: frequency,
		MinutesToPing: -frequency,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Int("ping_frequency", frequency).
		Bool("replaced", existing != nil).
		Msg("session started")

	return ReplySessionBegin, nil
}

// EndSession finishes the user's working session and hands back a summary
// reference. Without a session in progress the user just gets the whimsical
// refusal. The session row is gone before the summary is built, so a crash
// in between loses the summary rather than resurrecting the session.
func (s *SessionService) EndSession(ctx context.Context, user *domain.User) (string, error) {
	mu := s.locks.forUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.sessionRepo.FindByOwner(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check active session: %w", err)
	}
	if existing == nil {
		return ReplyNoSession, nil
	}

	if err := s.sessionRepo.Delete(ctx, existing.ID); err != nil {
		return "", fmt.Errorf("failed to delete session: %w", err)
	}

	entries, err := s.responseRepo.ListByOwnerSince(ctx, user.ID, existing.StartedAt)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to collect session entries")
	}

	ref, err := s.exporter.Export(ctx, user, entries)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("summary export failed")
		ref = export.PlaceholderReference()
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Int("entries", len(entries)).
		Msg("session ended")

	return fmt.Sprintf(ReplySessionEnd, ref), nil
}

// LogResponse stores the user's message verbatim as a piece of completed
// work. Gatekeeping (only users with a session in progress may log) is the
// dispatcher's job.
func (s *SessionService) LogResponse(ctx context.Context, user *domain.User, text string) (string, error) {
	mu := s.locks.forUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	response := &domain.LoggedResponse{
		OwnerID: user.ID,
		Text:    text,
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return "", fmt.Errorf("failed to log response: %w", err)
	}

	s.log.Debug().Int64("user_id", user.ID).Msg("response logged")

	return ReplyResponseLogged, nil
}

// QuerySession returns the user's session in progress, or nil. Read-only.
func (s *SessionService) QuerySession(ctx context.Context, user *domain.User) (*domain.ActiveSession, error) {
	return s.sessionRepo.FindByOwner(ctx, user.ID)
}
