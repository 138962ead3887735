// Package memory provides the in-process fast cache tier, an expiring LRU.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.FastCache = (*Cache)(nil)

// Cache is a size-bounded LRU whose entries expire after a fixed TTL.
// It is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, []byte]
}

// New creates a cache holding at most size entries for ttl each.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the value stored under key.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

// Set stores a copy of value under key.
func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	c.lru.Add(key, append([]byte(nil), value...))
	return nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Close drops every entry.
func (c *Cache) Close() error {
	c.lru.Purge()
	return nil
}
