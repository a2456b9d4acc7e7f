package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"funnel-player-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ScreenLoader fetches authored screen content from a backing store (e.g.,
// the editor's document DB).
type ScreenLoader interface {
	LoadScreen(ctx context.Context, screenID string) (domain.ScreenContent, error)
}

// ScreenRepository caches screens with TTL to avoid repeated DB hits.
// Screens are validated once on load; cache hits serve the validated value.
type ScreenRepository struct {
	loader ScreenLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedScreen
}

type cachedScreen struct {
	screen    domain.ScreenContent
	expiresAt time.Time
}

func NewScreenRepository(loader ScreenLoader, ttl time.Duration) *ScreenRepository {
	return &ScreenRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScreen),
	}
}

func (r *ScreenRepository) GetScreen(ctx context.Context, screenID string) (domain.ScreenContent, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[screenID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.screen, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(screenID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[screenID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.screen, nil
		}
		r.mu.RUnlock()

		content, err := r.loader.LoadScreen(ctx, screenID)
		if err != nil {
			return domain.ScreenContent{}, err
		}
		if err := content.Validate(); err != nil {
			return domain.ScreenContent{}, err
		}

		r.mu.Lock()
		r.cache[screenID] = cachedScreen{
			screen:    content,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return domain.ScreenContent{}, err
	}
	return result.(domain.ScreenContent), nil
}

// StaticScreenLoader is a simple loader backed by an in-memory map (useful
// for tests/demos).
type StaticScreenLoader struct {
	screens map[string]domain.ScreenContent
}

func NewStaticScreenLoader(screens map[string]domain.ScreenContent) *StaticScreenLoader {
	return &StaticScreenLoader{screens: screens}
}

func (l *StaticScreenLoader) LoadScreen(_ context.Context, screenID string) (domain.ScreenContent, error) {
	if screen, ok := l.screens[screenID]; ok {
		return screen, nil
	}
	return domain.ScreenContent{}, domain.ErrScreenNotFound
}

func (r *ScreenRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
