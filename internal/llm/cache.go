package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Cache defaults. One hour matches how long a cached completion stays useful
// for an identical (model, temperature, prompt) triple.
const (
	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 256
)

type cacheEntry struct {
	value   string
	written time.Time
}

// Cache is a bounded, process-wide completion cache with per-entry TTL and
// oldest-entry eviction. Entries are immutable once written. Safe for
// concurrent use; a duplicate miss under race only costs one extra call.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the given capacity and TTL. Non-positive
// arguments use the defaults.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries:  make(map[string]cacheEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock substitutes the time source. For tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// CacheKey derives the cache key for a completion request.
func CacheKey(model string, temperature float32, prompt string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%.2f|%s", model, temperature, prompt))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.written) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return "", false
	}
	return entry.value, true
}

// Set stores value under key, evicting the oldest entry when at capacity.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.capacity && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			// Expiry may have removed the entry already; a stale order
			// slot is not an eviction.
			if _, live := c.entries[oldest]; !live {
				continue
			}
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{value: value, written: c.now()}
}

// removeFromOrder drops key's slot so order tracks live entries oldest-first.
func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
