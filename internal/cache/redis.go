package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(addr string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func key(month string) string {
	return "availability:" + month
}

func (c *RedisCache) GetMonth(ctx context.Context, month string) (map[string][]string, error) {
	raw, err := c.rdb.Get(ctx, key(month)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", month, err)
	}
	var taken map[string][]string
	if err := json.Unmarshal([]byte(raw), &taken); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", month, err)
	}
	return taken, nil
}

func (c *RedisCache) SetMonth(ctx context.Context, month string, taken map[string][]string) error {
	b, err := json.Marshal(taken)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(month), b, c.ttl).Err()
}

func (c *RedisCache) DeleteMonth(ctx context.Context, month string) error {
	return c.rdb.Del(ctx, key(month)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
