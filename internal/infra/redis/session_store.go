package redis

import (
	"context"
	"sync"
	"time"

	"funnel-player-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - It keeps a local in-memory map of sessions because the player state
//     machine and its gate ticker are in-process.
//   - Redis marks play-session liveness (and could be extended to share
//     response streams or route cross-instance pub/sub).
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

// Put installs a fresh session, closing any replaced one. Re-entering a
// screen id gets fresh state, never resumed state.
func (s *SessionStore) Put(key string, session *app.Session) {
	s.mu.Lock()
	previous := s.sessions[key]
	s.sessions[key] = session
	s.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(key), "1", s.ttl).Err()
}

func (s *SessionStore) Get(key string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(key)).Err()
}

func (s *SessionStore) key(playKey string) string {
	return "screen:session:" + playKey
}
