package ratelimit

import (
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ClosableStore is a Store that owns resources.
type ClosableStore interface {
	Store
	io.Closer
}

// NewStore builds the store described by url: "memory://" (or empty) for
// the in-process store, "redis://" or "rediss://" for Redis.
func NewStore(url string) (ClosableStore, error) {
	switch {
	case url == "" || url == "memory://":
		return NewMemoryStore(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit storage url %q", url)
	}
}
