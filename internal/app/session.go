package app

import (
	"sync"
	"time"

	"funnel-player-service/internal/domain"
	"funnel-player-service/internal/screen"
)

// Update is what subscribers receive: the fresh render state and, when the
// applied event produced one, the outward response.
type Update struct {
	View     screen.View            `json:"view"`
	Response *domain.ScreenResponse `json:"response,omitempty"`
}

// Session owns one player instance for the lifetime of a screen visit. It
// serializes all state transitions behind a mutex and drives gate progress
// from its own ticker goroutine, which is the only autonomous source of
// state change and is stopped on completion, close, or replacement.
type Session struct {
	key  string
	tick time.Duration

	mu          sync.Mutex
	player      *screen.Player
	subscribers map[chan Update]struct{}
	closed      bool
	stop        chan struct{}
}

// NewSession wraps a player and starts its gate ticker.
func NewSession(key string, player *screen.Player, tick time.Duration) *Session {
	s := &Session{
		key:         key,
		tick:        tick,
		player:      player,
		subscribers: make(map[chan Update]struct{}),
		stop:        make(chan struct{}),
	}
	go s.runGates()
	return s
}

// Apply feeds one event through the player, broadcasts the resulting view
// to subscribers, and returns both to the caller.
func (s *Session) Apply(ev screen.Event) (screen.View, *domain.ScreenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return screen.View{}, nil, domain.ErrSessionNotFound
	}

	resp, err := s.player.Reduce(ev)
	if err != nil {
		return s.player.View(), nil, err
	}
	view := s.player.View()
	s.broadcastLocked(Update{View: view, Response: resp})
	return view, resp, nil
}

// View returns the current render state without applying an event.
func (s *Session) View() screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.View()
}

// Subscribe returns a channel that receives view updates for this screen.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	s.mu.Lock()
	initial := Update{View: s.player.View()}
	if s.closed {
		// Closed while the caller was connecting (e.g. the session was
		// replaced on re-enter). Hand back the last snapshot and a channel
		// that is already done.
		ch <- initial
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// The channel is fresh and buffered, so this send cannot block; doing it
	// under the lock means Close can never close the channel first.
	ch <- initial
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Completed reports whether the screen reached its terminal state.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.State() == screen.StateCompleted
}

// Close stops the gate ticker and drops all subscribers. Navigating away
// from a screen must stop any pending loading timer for it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.stop)
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) runGates() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.advance() {
				return
			}
		}
	}
}

// advance applies one tick worth of gate progress. Returns true when the
// ticker should stop for good.
func (s *Session) advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.player.State() == screen.StateCompleted {
		return true
	}
	if !s.player.GatesPending() {
		return false
	}
	resp, err := s.player.Reduce(screen.AdvanceGates{Elapsed: s.tick})
	if err != nil {
		return false
	}
	s.broadcastLocked(Update{View: s.player.View(), Response: resp})
	return false
}

func (s *Session) broadcastLocked(update Update) {
	for ch := range s.subscribers {
		select {
		case ch <- update:
		default:
			// Drop the oldest pending update so slow clients never block
			// the broadcast; they only ever miss intermediate frames.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
