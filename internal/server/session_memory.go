package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the timeout are dropped.
type MemoryStore struct {
	sessions       map[string]*Session
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	closeOnce      sync.Once
	sessionTimeout time.Duration
	logger         *slog.Logger
	onExpire       func(n int)
}

// NewMemoryStore creates a memory store with the default timeout.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithLogger(DefaultSessionTimeout, slog.Default())
}

// NewMemoryStoreWithLogger creates a memory store with a custom timeout and logger.
func NewMemoryStoreWithLogger(timeout time.Duration, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	s := &MemoryStore{
		sessions:       make(map[string]*Session),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
	}

	go s.cleanupExpiredSessions()

	return s
}

// Get returns a copy of the session and refreshes its last access time.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := time.Now()
	if now.Sub(session.LastAccess) > s.sessionTimeout {
		delete(s.sessions, id)
		s.expired(1)
		return nil, ErrSessionNotFound
	}
	session.LastAccess = now

	cp := *session
	return &cp, nil
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	cp := *session
	cp.LastAccess = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &cp
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// OnExpire registers fn to be told how many sessions timed out. It is not
// called for explicit deletes.
func (s *MemoryStore) OnExpire(fn func(n int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

// expired must be called with mu held.
func (s *MemoryStore) expired(n int) {
	if s.onExpire != nil && n > 0 {
		s.onExpire(n)
	}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupExpiredSessions periodically removes expired sessions
func (s *MemoryStore) cleanupExpiredSessions() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if n := s.removeExpired(time.Now()); n > 0 {
				s.logger.Info("Cleaned up expired sessions", "count", n)
			}
		case <-s.cleanupDone:
			return
		}
	}
}

func (s *MemoryStore) removeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastAccess) > s.sessionTimeout {
			delete(s.sessions, id)
			expired++
		}
	}
	s.expired(expired)
	return expired
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.cleanupTicker.Stop()
		close(s.cleanupDone)
	})
	return nil
}
