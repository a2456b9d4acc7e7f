package app_test

import (
	"sync"
	"testing"
	"time"

	"funnel-player-service/internal/app"
	"funnel-player-service/internal/domain"
	"funnel-player-service/internal/screen"
)

func newTestSession(t *testing.T) *app.Session {
	t.Helper()
	player, err := screen.NewPlayer(domain.ScreenContent{
		ID: "welcome",
		Content: []domain.ContentItem{
			{Text: &domain.TextItem{Markup: "hi"}},
		},
	})
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return app.NewSession("v1/welcome", player, 50*time.Millisecond)
}

// Closing a session (re-enter replacement, leave from another connection)
// must never race a subscriber that is still connecting.
func TestSubscribeConcurrentWithClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		session := newTestSession(t)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, cancel := session.Subscribe()
			defer cancel()
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			session.Close()
		}()
		wg.Wait()
	}
}

func TestSubscribeAfterCloseStillDeliversSnapshot(t *testing.T) {
	session := newTestSession(t)
	session.Close()

	ch, cancel := session.Subscribe()
	defer cancel()

	update, ok := <-ch
	if !ok {
		t.Fatalf("expected a snapshot before the channel closes")
	}
	if update.View.ScreenID != "welcome" {
		t.Fatalf("expected welcome snapshot, got %+v", update.View)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after the snapshot")
	}
}
