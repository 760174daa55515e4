package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

// ContentLoader fetches a content pack from a backing store (YAML directory,
// Postgres, etc).
type ContentLoader interface {
	LoadContent(ctx context.Context, packID string) (domain.ContentPack, error)
}

// ContentRepository caches content packs with TTL to avoid re-reading the
// backing store on every session start.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPack
}

type cachedPack struct {
	pack      domain.ContentPack
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPack),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, packID string) (domain.ContentPack, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.pack, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.pack, nil
		}
		r.mu.RUnlock()

		pack, err := r.loader.LoadContent(ctx, packID)
		if err != nil {
			return domain.ContentPack{}, err
		}

		r.mu.Lock()
		r.cache[packID] = cachedPack{
			pack:      pack,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return pack, nil
	})
	if err != nil {
		return domain.ContentPack{}, err
	}
	return result.(domain.ContentPack), nil
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader serves packs from an in-memory map (tests/demos).
type StaticContentLoader struct {
	packs map[string]domain.ContentPack
}

func NewStaticContentLoader(packs map[string]domain.ContentPack) *StaticContentLoader {
	return &StaticContentLoader{packs: packs}
}

func (l *StaticContentLoader) LoadContent(_ context.Context, packID string) (domain.ContentPack, error) {
	if pack, ok := l.packs[packID]; ok {
		return pack, nil
	}
	return domain.ContentPack{}, domain.ErrContentNotFound
}
