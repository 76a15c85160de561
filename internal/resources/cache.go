// Package resources caches backend reads per browser. A value younger than
// the dedupe interval is served from memory and concurrent readers of one key
// share a single in-flight request.
package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNotCached = errors.New("resources: key was never fetched")

type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	fetch     Fetcher
}

type Cache struct {
	dedupe time.Duration
	now    func() time.Time

	mu         sync.Mutex
	entries    map[string]*entry
	generation uint64

	group singleflight.Group
}

func NewCache(dedupe time.Duration) *Cache {
	return &Cache{
		dedupe:  dedupe,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the cached value for key when it is fresh, otherwise it runs
// fetch. Failed fetches are not cached.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.dedupe {
		value := e.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	return c.load(ctx, key, fetch)
}

// Revalidate refetches key with the fetcher it was last loaded with,
// ignoring freshness.
func (c *Cache) Revalidate(ctx context.Context, key string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, ErrNotCached
	}
	return c.load(ctx, key, e.fetch)
}

// Has reports whether key was fetched successfully since the last reset.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Invalidate drops every key starting with prefix.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Reset forgets everything. Requests already in flight finish but their
// results are discarded.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.generation++
}

// load runs fetch once per generation and key. The shared fetch ignores the
// caller's cancellation and is bounded by the backend client's timeout; a
// caller that gives up returns its own context error.
func (c *Cache) load(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%d|%s", gen, key), func() (any, error) {
		value, err := fetch(shared)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.entries[key] = &entry{value: value, fetchedAt: c.now(), fetch: fetch}
		}
		c.mu.Unlock()
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fetch is the typed form of Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	value, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}
