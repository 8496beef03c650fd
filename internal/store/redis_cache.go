// In file: internal/store/redis_cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	cacheversion "github.com/chengwenxing-cmd/VoiceService/internal/version"
)

const (
	cacheKeyPrefix  = "intent"
	DefaultCacheTTL = 24 * time.Hour
)

// RedisCache fronts another IntentStore with Redis.
//
// Reads go to Redis first and fall back to the wrapped store, filling Redis on
// the way out; writes go to the wrapped store and then overwrite the cached
// copy so the newest row keeps winning. Redis failures are logged and never
// surface to callers, the wrapped store stays the source of truth.
type RedisCache struct {
	next   IntentStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps next. A non-positive ttl means DefaultCacheTTL.
func NewRedisCache(next IntentStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{next: next, rdb: rdb, ttl: ttl, logger: logger.Named("store.redis")}
}

func (c *RedisCache) Save(ctx context.Context, in *intent.Intent) error {
	if err := c.next.Save(ctx, in); err != nil {
		return err
	}
	c.set(ctx, in)
	return nil
}

func (c *RedisCache) FindByText(ctx context.Context, text string) (*intent.Intent, error) {
	key := cacheversion.GenerateVersionedCacheKey(cacheKeyPrefix, text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached intent.Intent
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			c.logger.Debug("intent cache HIT", zap.String("text", text))
			return &cached, nil
		}
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		c.rdb.Del(ctx, key)
	case err == redis.Nil:
		c.logger.Debug("intent cache MISS", zap.String("text", text))
	default:
		c.logger.Warn("redis lookup failed, reading through", zap.Error(err))
	}

	in, err := c.next.FindByText(ctx, text)
	if err != nil || in == nil {
		return in, err
	}
	c.set(ctx, in)
	return in, nil
}

func (c *RedisCache) FindRecent(ctx context.Context, limit int) ([]*intent.Intent, error) {
	return c.next.FindRecent(ctx, limit)
}

// Close closes the wrapped store. The Redis client is owned by the caller.
func (c *RedisCache) Close() error {
	return c.next.Close()
}

func (c *RedisCache) set(ctx context.Context, in *intent.Intent) {
	b, err := json.Marshal(in)
	if err != nil {
		c.logger.Warn("failed to marshal intent for cache", zap.Error(err))
		return
	}
	key := cacheversion.GenerateVersionedCacheKey(cacheKeyPrefix, in.Text())
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to write intent cache", zap.Error(err))
	}
}
