package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"funnel-player-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ScreenLoader fetches authored screen content from a backing store (e.g.,
// the editor's document DB).
type ScreenLoader interface {
	LoadScreen(ctx context.Context, screenID string) (domain.ScreenContent, error)
}

// ScreenRepository caches screen documents in Redis and falls back to a
// loader on cache miss. A screen is a single JSON document, so it is stored
// whole: SET screen:{screenID} {json} EX ttl. Cached documents were
// validated before caching; hits are re-decoded but not re-validated.
type ScreenRepository struct {
	client *redis.Client
	loader ScreenLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewScreenRepository(client *redis.Client, loader ScreenLoader, ttl time.Duration) *ScreenRepository {
	return &ScreenRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScreenRepository) GetScreen(ctx context.Context, screenID string) (domain.ScreenContent, error) {
	key := r.screenKey(screenID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var cached domain.ScreenContent
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Corrupt cache entry: fall through and reload.
	}

	result, err, _ := r.sf.Do(screenID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var cached domain.ScreenContent
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}

		content, err := r.loader.LoadScreen(ctx, screenID)
		if err != nil {
			return domain.ScreenContent{}, err
		}
		if err := content.Validate(); err != nil {
			return domain.ScreenContent{}, err
		}

		if raw, err := json.Marshal(content); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.ScreenContent{}, err
	}
	return result.(domain.ScreenContent), nil
}

func (r *ScreenRepository) screenKey(screenID string) string {
	return "screen:" + screenID
}

func (r *ScreenRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
