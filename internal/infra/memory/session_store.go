package memory

import (
	"sync"

	"funnel-player-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

// Put installs a fresh session, closing any previous one under the same key
// so its gate ticker stops and its subscribers drain.
func (s *SessionStore) Put(key string, session *app.Session) {
	s.mu.Lock()
	previous := s.sessions[key]
	s.sessions[key] = session
	s.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
}

func (s *SessionStore) Get(key string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
