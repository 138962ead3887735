// Package redis provides the fast cache tier on a Redis server, so several
// processes share one set of parsed blobs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "sitesearch:blob:"

// Ensure Cache implements the interface.
var _ driven.FastCache = (*Cache)(nil)

// Cache stores entries with SET EX so Redis enforces the TTL.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New connects to the Redis server at addr using database db.
func New(addr string, db int, ttl time.Duration) *Cache {
	return NewWithClient(goredis.NewClient(&goredis.Options{Addr: addr, DB: db}), ttl)
}

// NewWithClient wraps an existing client. The cache takes ownership and
// closes it on Close.
func NewWithClient(client *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Ping checks the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores value under key with the cache's TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, KeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
