package listview

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Loader fetches the authoritative copy of a collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Collection caches a remote collection. It refetches on first use, after
// MarkStale, and once MaxAge has passed.
type Collection[T any] struct {
	load   Loader[T]
	maxAge time.Duration
	now    func() time.Time

	mu       sync.Mutex
	recs     []T
	loadedAt time.Time
	stale    bool
	err      error
	version  uint64
}

// NewCollection returns a cache backed by load. A zero maxAge disables
// age-based refetching.
func NewCollection[T any](load Loader[T], maxAge time.Duration) *Collection[T] {
	return &Collection[T]{load: load, maxAge: maxAge, now: time.Now, stale: true}
}

// Get returns the cached records, refetching them first when stale. The
// second result reports whether a fetch happened.
func (c *Collection[T]) Get(ctx context.Context) ([]T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.needsLoad() {
		return c.recs, false, nil
	}

	recs, err := c.load(ctx)
	if err != nil {
		c.err = err
		// Keep serving the previous copy; it stays stale.
		return c.recs, false, fmt.Errorf("loading collection: %w", err)
	}
	c.recs = recs
	c.loadedAt = c.now()
	c.stale = false
	c.err = nil
	c.version++
	return c.recs, true, nil
}

func (c *Collection[T]) needsLoad() bool {
	if c.stale {
		return true
	}
	return c.maxAge > 0 && c.now().Sub(c.loadedAt) > c.maxAge
}

// Records returns the cached records without fetching.
func (c *Collection[T]) Records() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recs
}

// MarkStale forces the next Get to refetch.
func (c *Collection[T]) MarkStale() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Stale reports whether the next Get will refetch.
func (c *Collection[T]) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsLoad()
}

// Version increases whenever the cached records change.
func (c *Collection[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// LastError returns the error of the most recent failed fetch, if the cache
// has not been refreshed since.
func (c *Collection[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Remove drops records whose id is in ids from the cached copy.
func (c *Collection[T]) Remove(id func(T) string, ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		drop[v] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]T, 0, len(c.recs))
	for _, rec := range c.recs {
		if _, ok := drop[id(rec)]; !ok {
			kept = append(kept, rec)
		}
	}
	c.recs = kept
	c.version++
}
