package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestGetMissingKey(t *testing.T) {
	rc, _ := newTestClient(t)

	_, err := rc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSetAndGet(t *testing.T) {
	rc, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", "v"))
	val, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestSetExExpires(t *testing.T) {
	rc, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, rc.SetEx(ctx, "k", "v", time.Minute))
	ttl, err := rc.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(2 * time.Minute)
	_, err = rc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestIncrAndPing(t *testing.T) {
	rc, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Ping(ctx))
	n, err := rc.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = rc.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient("127.0.0.1", "1", "")
	assert.Error(t, err)
}
