package apiclient

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds the last successful response body per endpoint key.
//
// Concurrent misses for one key share a single fetch. Every invalidation
// bumps an epoch; a fetch that started under an older epoch still answers
// its callers but is never stored, and later callers start a fresh fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	epoch   uint64
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get returns the cached body for key or runs fetch to fill it. A caller
// whose ctx ends stops waiting; the shared fetch keeps running for the rest.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if body, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return body, nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	flightKey := key + "#" + strconv.FormatUint(epoch, 10)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		body, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.epoch == epoch {
			c.entries[key] = body
		}
		c.mu.Unlock()
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops prefix and every key nested under it, either as a
// sub-path or with a query string. An empty prefix clears the cache.
func (c *Cache) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for key := range c.entries {
		for _, prefix := range prefixes {
			if covers(prefix, key) {
				delete(c.entries, key)
				break
			}
		}
	}
}

func covers(prefix, key string) bool {
	if prefix == "" || key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+"/") || strings.HasPrefix(key, prefix+"?")
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
