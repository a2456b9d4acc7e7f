package memory

import (
	"testing"
	"time"

	"funnel-player-service/internal/app"
	"funnel-player-service/internal/domain"
	"funnel-player-service/internal/screen"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := newTestSession(t, "v1/welcome")
	store.Put("v1/welcome", session)
	if _, ok := store.Get("v1/welcome"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("v1/welcome")
	if _, ok := store.Get("v1/welcome"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStorePutReplacesAndCloses(t *testing.T) {
	store := NewSessionStore()

	first := newTestSession(t, "v1/welcome")
	store.Put("v1/welcome", first)
	second := newTestSession(t, "v1/welcome")
	store.Put("v1/welcome", second)

	got, ok := store.Get("v1/welcome")
	if !ok || got != second {
		t.Fatalf("expected replacement session")
	}
	// The replaced session is closed: applying to it fails.
	if _, _, err := first.Apply(screen.SelectOption{OptionID: "a"}); err == nil {
		t.Fatalf("expected closed session to reject events")
	}
}

func newTestSession(t *testing.T, key string) *app.Session {
	t.Helper()
	player, err := screen.NewPlayer(domain.ScreenContent{
		ID: "welcome",
		Content: []domain.ContentItem{
			{Selection: &domain.SelectionItem{
				Mode:    domain.ModeCheckbox,
				Options: []domain.Option{{ID: "a"}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return app.NewSession(key, player, 50*time.Millisecond)
}
