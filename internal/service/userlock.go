package service

import "sync"

// userLocks hands out one mutex per user so session operations for the same
// user run one at a time while different users proceed in parallel. Entries
// are never evicted; the map grows with the number of distinct users, which
// for a chat bot is small.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

// forUser returns the mutex for the given user, creating it on first use.
func (l *userLocks) forUser(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.locks[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.locks[id] = m
	return m
}
