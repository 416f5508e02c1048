package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in Redis so several server processes share one
// quota per client.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: client}
}

// Hit implements Store with fixed-window semantics. INCR and PTTL run in
// one MULTI/EXEC so the key cannot expire between them; a key without a TTL
// is either the first hit of a window or one left behind by a failed
// PEXPIRE, and in both cases the window starts now.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("incr %s: %w", key, err)
	}

	count, ttl := incr.Val(), pttl.Val()
	if ttl < 0 {
		if err := s.redis.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("expire %s: %w", key, err)
		}
		ttl = window
	}
	return count, ttl, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
