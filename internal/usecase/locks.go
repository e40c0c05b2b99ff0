package usecase

import "sync"

// sessionLocks hands out one mutex per session id, giving every session a
// single-writer mutation scope without any cross-session coordination.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the session's mutex and returns the unlock func.
func (l *sessionLocks) Acquire(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the mutex of a session that left the live store. A later
// Acquire for the same id gets a fresh mutex; that is safe because the id no
// longer resolves to a session.
func (l *sessionLocks) Forget(sessionID string) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}
