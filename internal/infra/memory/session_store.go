package memory

import (
	"sync"

	"github.com/7h3v01c3/PhishBait/internal/engine"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// New sessions are created idle with the store's engine options.
type SessionStore struct {
	opts     engine.Options
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func NewSessionStore(opts engine.Options) *SessionStore {
	return &SessionStore{
		opts:     opts,
		sessions: make(map[string]*engine.Session),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string) *engine.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}
	session := engine.NewSession(sessionID, s.opts)
	s.sessions[sessionID] = session
	return session
}

func (s *SessionStore) Get(sessionID string) (*engine.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
