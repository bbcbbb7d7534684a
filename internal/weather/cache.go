package weather

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type cachedSnapshot struct {
	snap      Snapshot
	fetchedAt time.Time
}

// CachedProvider keeps the last snapshot per point for a TTL. When a refresh
// fails it serves the stale value if one exists.
type CachedProvider struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedSnapshot
}

// NewCachedProvider wraps a provider with a TTL cache.
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedSnapshot),
	}
}

func pointKey(p Point) string {
	return fmt.Sprintf("%.3f,%.3f", p.Latitude, p.Longitude)
}

// Current returns a cached snapshot or fetches a new one.
func (c *CachedProvider) Current(ctx context.Context, p Point) (Snapshot, error) {
	key := pointKey(p)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.snap, nil
	}

	snap, err := c.next.Current(ctx, p)
	if err != nil {
		if ok {
			return entry.snap, nil
		}
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.entries[key] = cachedSnapshot{snap: snap, fetchedAt: c.now()}
	c.mu.Unlock()
	return snap, nil
}

// Refresh fetches p regardless of cache age.
func (c *CachedProvider) Refresh(ctx context.Context, p Point) error {
	snap, err := c.next.Current(ctx, p)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[pointKey(p)] = cachedSnapshot{snap: snap, fetchedAt: c.now()}
	c.mu.Unlock()
	return nil
}
