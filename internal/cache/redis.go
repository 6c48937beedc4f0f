package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roomlink/connect/internal/config"
)

// MutualCountTTL bounds how long a cached mutual-match count lives
// without being touched.
const MutualCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.Client.Expire(ctx, key, ttl).Err()
}

// KeyForMutualCount generates the Redis key for a user's mutual-match
// count within a room.
func (c *RedisCache) KeyForMutualCount(roomID, userID uint64) string {
	return fmt.Sprintf("mutuals:count:%d:%d", roomID, userID)
}

// GetMutualCount reads the cached mutual count. A cache miss is reported
// via ok=false, not an error.
func (c *RedisCache) GetMutualCount(ctx context.Context, roomID, userID uint64) (int64, bool, error) {
	key := c.KeyForMutualCount(roomID, userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat unparsable value as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, MutualCountTTL).Err()
	return n, true, nil
}

// SetMutualCount writes the mutual count with a fresh TTL.
func (c *RedisCache) SetMutualCount(ctx context.Context, roomID, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForMutualCount(roomID, userID), count, MutualCountTTL).Err()
}

// BumpMutualCount increments both members' cached counts after a match
// is created, refreshing TTLs. Missing keys are left alone so the next
// Status call repopulates them from the store.
func (c *RedisCache) BumpMutualCount(ctx context.Context, roomID uint64, userIDs ...uint64) {
	for _, uid := range userIDs {
		key := c.KeyForMutualCount(roomID, uid)
		exists, err := c.Client.Exists(ctx, key).Result()
		if err != nil || exists == 0 {
			continue
		}
		_, _ = c.Client.Incr(ctx, key).Result()
		_ = c.Client.Expire(ctx, key, MutualCountTTL).Err()
	}
}
