package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := NewCache(4, time.Hour)
	key := CacheKey("gemini-2.5-flash", 0.5, "some prompt")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, "cached response")
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "cached response", got)
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	c := NewCache(4, time.Hour).WithClock(func() time.Time { return now })

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	now = now.Add(59 * time.Minute)
	_, ok = c.Get("k")
	assert.True(t, ok, "entry should survive inside the TTL")

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire past the TTL")
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewCache(3, time.Hour)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	c.Set("k3", "v")

	_, ok := c.Get("k0")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("k3")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", got)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestCache_ResetAfterExpiryKeepsEvictionOldestFirst(t *testing.T) {
	now := time.Now()
	c := NewCache(2, time.Hour).WithClock(func() time.Time { return now })

	c.Set("a", "1")
	now = now.Add(30 * time.Minute)
	c.Set("b", "2")

	// "a" expires; the expired read must not leave a stale slot behind.
	now = now.Add(45 * time.Minute)
	_, ok := c.Get("a")
	require.False(t, ok)

	// Re-written "a" is now the newest entry, so the next eviction at
	// capacity must take "b", not "a".
	c.Set("a", "3")
	c.Set("c", "4")

	got, ok := c.Get("a")
	require.True(t, ok, "freshly re-written entry must survive eviction")
	assert.Equal(t, "3", got)
	_, ok = c.Get("b")
	assert.False(t, ok, "oldest live entry should be the one evicted")
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCacheKey_DistinguishesInputs(t *testing.T) {
	base := CacheKey("gemini-2.5-flash", 0.5, "prompt")
	assert.NotEqual(t, base, CacheKey("gemini-2.5-pro", 0.5, "prompt"))
	assert.NotEqual(t, base, CacheKey("gemini-2.5-flash", 0.7, "prompt"))
	assert.NotEqual(t, base, CacheKey("gemini-2.5-flash", 0.5, "other prompt"))
	assert.Equal(t, base, CacheKey("gemini-2.5-flash", 0.5, "prompt"))
}
