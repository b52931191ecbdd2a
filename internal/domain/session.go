package domain

import (
	"sync"
	"time"
)

// SessionState tracks where a connection sits in its lifecycle.
type SessionState int

const (
	// StateConnecting: registered, no username bound yet.
	StateConnecting SessionState = iota
	// StateActive: username bound, full participant in the room.
	StateActive
	// StateClosed: terminal, unregistered.
	StateClosed
)

// Session is the logical identity of one connected client. The
// connection ID is assigned by the registry; the username is bound
// on a successful connect handshake.
type Session struct {
	ID string

	mu           sync.RWMutex
	state        SessionState
	username     string
	createdAt    time.Time
	lastActiveAt time.Time
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		state:        StateConnecting,
		createdAt:    now,
		lastActiveAt: now,
	}
}

// Activate binds the username and moves the session to StateActive.
func (s *Session) Activate(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.state = StateActive
	s.lastActiveAt = time.Now()
}

// Close marks the session terminal. Further Activate calls are ignored
// by callers, not by the session itself; the coordinator checks state
// before every transition.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsActive() bool {
	return s.State() == StateActive
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = time.Now()
}
