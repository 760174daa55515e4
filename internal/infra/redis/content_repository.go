package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

// ContentLoader fetches a content pack from a backing store (YAML directory,
// Postgres, etc).
type ContentLoader interface {
	LoadContent(ctx context.Context, packID string) (domain.ContentPack, error)
}

// ContentRepository caches content packs in Redis as a JSON blob per pack
// (SET phishbait:content:{packID}) and falls back to a loader on cache miss.
// The engine needs full question text and options for normalization, so the
// whole pack is cached, not just an answer key.
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, packID string) (domain.ContentPack, error) {
	key := r.contentKey(packID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var pack domain.ContentPack
		if err := json.Unmarshal(raw, &pack); err == nil {
			return pack, nil
		}
		// Corrupt cache entry; fall through and reload from source.
	}

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var pack domain.ContentPack
			if err := json.Unmarshal(raw, &pack); err == nil {
				return pack, nil
			}
		}

		pack, err := r.loader.LoadContent(ctx, packID)
		if err != nil {
			return domain.ContentPack{}, err
		}

		if raw, err := json.Marshal(pack); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return pack, nil
	})
	if err != nil {
		return domain.ContentPack{}, err
	}
	return result.(domain.ContentPack), nil
}

func (r *ContentRepository) contentKey(packID string) string {
	return "phishbait:content:" + packID
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
