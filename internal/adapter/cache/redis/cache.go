// Package redis implements the fast cache on top of go-redis. Keys are never
// given an expiration and never deleted.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"

	goredis "github.com/redis/go-redis/v9"
)

type Cache struct {
	client goredis.Cmdable
}

func NewCache(client goredis.Cmdable) *Cache {
	return &Cache{client: client}
}

// Get returns the value stored at key. A missing key is reported through the
// boolean, not as an error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "adapter.cache.redis.Cache.Get"

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: %w: %w", op, entity.ErrCacheUnavailable, err)
	}

	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	const op = "adapter.cache.redis.Cache.Set"

	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrCacheUnavailable, err)
	}

	return nil
}

// Incr atomically increments the integer at key, creating it at zero first
// when absent, and returns the new value.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	const op = "adapter.cache.redis.Cache.Incr"

	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, entity.ErrCacheUnavailable, err)
	}

	return n, nil
}
