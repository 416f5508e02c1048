package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold bounds how many windows accumulate before expired ones are
// dropped.
const sweepThreshold = 1024

type window struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Counters do not survive a restart and
// are not shared between processes.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, length time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		if len(s.windows) >= sweepThreshold {
			s.sweep(now)
		}
		w = &window{expiresAt: now.Add(length)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt.Sub(now), nil
}

// Close implements io.Closer for symmetry with RedisStore.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.expiresAt) {
			delete(s.windows, key)
		}
	}
}
