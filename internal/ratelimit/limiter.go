package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited means the key has used up its quota for the window.
var ErrRateLimited = errors.New("rate limited")

// Store keeps fixed-window hit counters.
//
// Hit atomically increments the counter for key, starting a new window of
// the given length when none is active, and returns the new count and the
// time left in the window.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// Decision describes the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces a Rate per key on top of a Store.
type Limiter struct {
	store  Store
	rate   Rate
	prefix string
}

// New creates a limiter. prefix namespaces keys so several limiters can
// share one store.
func New(store Store, rate Rate, prefix string) *Limiter {
	return &Limiter{store: store, rate: rate, prefix: prefix}
}

// Rate returns the configured quota.
func (l *Limiter) Rate() Rate {
	return l.rate
}

// Allow counts one request for key. It returns ErrRateLimited together with
// the decision when the quota is exceeded, and a wrapped store error when
// the counter could not be updated.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetIn, err := l.store.Hit(ctx, l.prefix+key, l.rate.Window)
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit store: %w", err)
	}
	if count > int64(l.rate.Limit) {
		return Decision{RetryAfter: resetIn}, ErrRateLimited
	}
	return Decision{
		Allowed:   true,
		Remaining: l.rate.Limit - int(count),
	}, nil
}
