// Package cache holds the Redis generation counter that versions the
// public response cache.  Every write that changes what a public listing
// shows bumps the generation; cached entries keyed under an older
// generation are never read again and expire on their own TTL.
package cache

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Generation is a monotonically increasing counter stored in Redis.  A nil
// *Generation or one without a client is valid and always reports 0.
type Generation struct {
	rdb *redis.Client
	key string
}

// NewGeneration returns a counter stored under prefix + ":gen".
func NewGeneration(rdb *redis.Client, prefix string) *Generation {
	return &Generation{rdb: rdb, key: prefix + ":gen"}
}

// Current returns the current generation.  Missing keys and Redis errors
// both read as 0; callers fall back to the TTL in that case.
func (g *Generation) Current(ctx context.Context) int64 {
	if g == nil || g.rdb == nil {
		return 0
	}
	s, err := g.rdb.Get(ctx, g.key).Result()
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Bump advances the generation, invalidating every cached listing.
func (g *Generation) Bump(ctx context.Context) error {
	if g == nil || g.rdb == nil {
		return nil
	}
	if err := g.rdb.Incr(ctx, g.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
