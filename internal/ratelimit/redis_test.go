package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb), mr
}

func TestRedisStore_FixedWindow(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	l := New(store, Rate{Limit: 2, Window: time.Minute}, "rl:")
	ctx := context.Background()

	_, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	_, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)

	d, err := l.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)

	assert.Equal(t, "3", mustGet(t, mr, "rl:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("rl:10.0.0.1"))

	mr.FastForward(time.Minute)
	_, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
}

func TestRedisStore_RestoresMissingTTL(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	require.NoError(t, mr.Set("k", "5"))

	count, resetIn, err := store.Hit(context.Background(), "k", 30*time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 6, count)
	assert.Equal(t, 30*time.Second, resetIn)
	assert.Equal(t, 30*time.Second, mr.TTL("k"))
}

// expireBeforeExec fast-forwards miniredis right before each transaction
// reaches the server, so the previous window ends at the moment of the hit.
type expireBeforeExec struct {
	mr     *miniredis.Miniredis
	window time.Duration
}

func (h expireBeforeExec) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h expireBeforeExec) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (h expireBeforeExec) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.mr.FastForward(h.window)
		return next(ctx, cmds)
	}
}

func TestRedisStore_WindowEndingAtHitStartsFresh(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	require.NoError(t, mr.Set("k", "9"))
	mr.SetTTL("k", time.Second)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	rdb.AddHook(expireBeforeExec{mr: mr, window: time.Second})
	store := NewRedisStore(rdb)

	count, resetIn, err := store.Hit(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, time.Minute, resetIn)
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	mr.Close()

	_, _, err := store.Hit(context.Background(), "k", time.Second)
	require.Error(t, err)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore("memcached://localhost")
	require.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
