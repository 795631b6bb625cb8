// Package memory provides an in-memory storage driver. It backs unit tests
// and throwaway local runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glebk/worklog-bot/internal/domain"
)

// Store holds all state behind a single lock. Repositories returned by
// Users, Sessions and Responses share it.
type Store struct {
	mu sync.RWMutex

	users     map[string]*domain.User
	sessions  map[int64]*domain.ActiveSession
	responses []*domain.LoggedResponse

	nextUserID     int64
	nextSessionID  int64
	nextResponseID int64
}

// New creates an empty Store
func New() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		sessions: make(map[int64]*domain.ActiveSession),
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Users returns the user repository view of the store
func (s *Store) Users() domain.UserRepository {
	return &userRepo{s}
}

// Sessions returns the session repository view of the store
func (s *Store) Sessions() domain.SessionRepository {
	return &sessionRepo{s}
}

// Responses returns the response repository view of the store
func (s *Store) Responses() domain.ResponseRepository {
	return &responseRepo{s}
}

func identityKey(spaceID, userID string) string {
	return spaceID + "\x00" + userID
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func cloneSession(s *domain.ActiveSession) *domain.ActiveSession {
	c := *s
	return &c
}

func cloneResponse(r *domain.LoggedResponse) *domain.LoggedResponse {
	c := *r
	return &c
}

type userRepo struct {
	store *Store
}

func (r *userRepo) GetOrCreate(ctx context.Context, spaceID, userID string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey(spaceID, userID)
	if existing, ok := s.users[key]; ok {
		return cloneUser(existing), nil
	}

	s.nextUserID++
	user := &domain.User{
		ID:        s.nextUserID,
		SpaceID:   spaceID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	s.users[key] = user
	return cloneUser(user), nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

type sessionRepo struct {
	store *Store
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.ActiveSession) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.OwnerID]; ok {
		return fmt.Errorf("owner %d already has an active session", session.OwnerID)
	}

	s.nextSessionID++
	session.ID = s.nextSessionID
	session.StartedAt = time.Now().UTC()
	s.sessions[session.OwnerID] = cloneSession(session)
	return nil
}

func (r *sessionRepo) FindByOwner(ctx context.Context, ownerID int64) (*domain.ActiveSession, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[ownerID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *sessionRepo) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for owner, session := range s.sessions {
		if session.ID == id {
			delete(s.sessions, owner)
			return nil
		}
	}
	return nil
}

func (r *sessionRepo) IncrementCountdowns(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		session.MinutesToPing++
	}
	return nil
}

func (r *sessionRepo) ListDue(ctx context.Context) ([]*domain.ActiveSession, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.ActiveSession
	for _, session := range s.sessions {
		if session.MinutesToPing >= 0 {
			due = append(due, cloneSession(session))
		}
	}
	return due, nil
}

func (r *sessionRepo) ResetCountdown(ctx context.Context, id int64, frequency int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.ID == id {
			session.MinutesToPing = -frequency
			return nil
		}
	}
	return nil
}

type responseRepo struct {
	store *Store
}

func (r *responseRepo) Create(ctx context.Context, response *domain.LoggedResponse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextResponseID++
	response.ID = s.nextResponseID
	response.CreatedAt = time.Now().UTC()
	s.responses = append(s.responses, cloneResponse(response))
	return nil
}

func (r *responseRepo) ListByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]*domain.LoggedResponse, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.LoggedResponse
	for _, response := range s.responses {
		if response.OwnerID == ownerID && !response.CreatedAt.Before(since) {
			out = append(out, cloneResponse(response))
		}
	}
	return out, nil
}
