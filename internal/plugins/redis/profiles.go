package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// ProfileCache decorates a ProfileSource with TTL-keyed redis entries.
// Profiles are hot on the hydration path (every group message resolves a
// sender), so misses fall through to the store and populate the cache.
type ProfileCache struct {
	rdb  *redis.Client
	next contracts.ProfileSource
	ttl  time.Duration
}

var _ contracts.ProfileSource = (*ProfileCache)(nil)

func NewProfileCache(rdb *redis.Client, next contracts.ProfileSource, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, next: next, ttl: ttl}
}

func (c *ProfileCache) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	key := "profile:" + id
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var p domain.Profile
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		// Corrupt entry, drop it and fall through.
		c.rdb.Del(ctx, key)
	}
	p, err := c.next.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(p); err == nil {
		c.rdb.Set(ctx, key, raw, c.ttl)
	}
	return p, nil
}

// Invalidate removes a cached profile after an external profile update.
func (c *ProfileCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, "profile:"+id).Err()
}
