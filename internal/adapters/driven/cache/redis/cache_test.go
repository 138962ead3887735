package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), 0, ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGet(t *testing.T) {
	c, mr := setupTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "abc", []byte("text")))

	v, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("text"), v)

	assert.True(t, mr.Exists(KeyPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(KeyPrefix+"abc"))
}

func TestCache_Expiry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc", []byte("text")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "abc")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "abc", []byte("x")))
}

func TestNewWithClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), DB: 2})
	c := NewWithClient(client, time.Minute)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v")))

	mr.Select(2)
	got, err := mr.Get(KeyPrefix + "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
