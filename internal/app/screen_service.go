package app

import (
	"context"
	"time"

	"funnel-player-service/internal/domain"
	"funnel-player-service/internal/screen"
)

// defaultTick is the gate progress interval when none is configured.
const defaultTick = 100 * time.Millisecond

// SessionRepository abstracts how play sessions are stored (in-memory,
// Redis-marked, etc). Put replaces any existing session under the key and
// the store is expected to close the replaced one: re-entering a screen
// gets fresh state, never resumed state.
type SessionRepository interface {
	Put(key string, s *Session)
	Get(key string) (*Session, bool)
	Delete(key string)
}

// ScreenRepository loads authored screen content (from cache/backing store).
// Implementations return validated content only.
type ScreenRepository interface {
	GetScreen(ctx context.Context, screenID string) (domain.ScreenContent, error)
}

// ScreenService contains the screen play use cases.
type ScreenService struct {
	sessions     SessionRepository
	screens      ScreenRepository
	placeholders map[string]string
	tick         time.Duration
}

func NewScreenService(store SessionRepository, screens ScreenRepository, placeholders map[string]string, tick time.Duration) *ScreenService {
	if tick <= 0 {
		tick = defaultTick
	}
	return &ScreenService{
		sessions:     store,
		screens:      screens,
		placeholders: placeholders,
		tick:         tick,
	}
}

// Enter loads a screen and starts a fresh play session for it, replacing
// any previous session for the same visitor and screen.
func (s *ScreenService) Enter(ctx context.Context, sessionID, screenID string) (screen.View, error) {
	content, err := s.screens.GetScreen(ctx, screenID)
	if err != nil {
		return screen.View{}, err
	}
	content = domain.SubstitutePlaceholders(content, s.placeholders)

	player, err := screen.NewPlayer(content)
	if err != nil {
		return screen.View{}, err
	}
	session := NewSession(playKey(sessionID, screenID), player, s.tick)
	s.sessions.Put(playKey(sessionID, screenID), session)
	return session.View(), nil
}

// Apply routes one user event into the visitor's session for a screen.
func (s *ScreenService) Apply(_ context.Context, sessionID, screenID string, ev screen.Event) (screen.View, *domain.ScreenResponse, error) {
	session, ok := s.sessions.Get(playKey(sessionID, screenID))
	if !ok {
		return screen.View{}, nil, domain.ErrSessionNotFound
	}
	return session.Apply(ev)
}

// Subscribe returns a channel that receives view updates for a screen.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ScreenService) Subscribe(_ context.Context, sessionID, screenID string) (<-chan Update, func(), error) {
	session, ok := s.sessions.Get(playKey(sessionID, screenID))
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave tears the session down, cancelling any pending loading timer.
func (s *ScreenService) Leave(_ context.Context, sessionID, screenID string) {
	key := playKey(sessionID, screenID)
	session, ok := s.sessions.Get(key)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(key)
}

func playKey(sessionID, screenID string) string {
	return sessionID + "/" + screenID
}
