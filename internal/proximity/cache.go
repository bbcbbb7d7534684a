package proximity

import (
	"sync"
	"time"
)

type cacheKey struct {
	storeID string
	radius  float64
	bucket  int64
	version uint64
}

// resultCache memoises results per (store, radius, as-of bucket, catalogue
// version). Entries from older buckets or versions are dropped on insert.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[cacheKey]Result
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, entries: make(map[cacheKey]Result)}
}

func (c *resultCache) key(storeID string, radius float64, at time.Time, version uint64) cacheKey {
	return cacheKey{storeID: storeID, radius: radius, bucket: at.UnixNano() / int64(c.ttl), version: version}
}

func (c *resultCache) get(k cacheKey) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[k]
	return r, ok
}

func (c *resultCache) put(k cacheKey, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for old := range c.entries {
		if old.bucket != k.bucket || old.version != k.version {
			delete(c.entries, old)
		}
	}
	c.entries[k] = r
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
