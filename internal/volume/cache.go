package volume

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps recently built volumes alive across series switches. It
// is safe for concurrent use. Evicted volumes are simply dropped; all
// derived state (MPR slices, MIP caches, GPU textures) is owned by the
// consumers and must be released when they observe the switch.
type Cache struct {
	inner *lru.Cache[string, *Volume]
}

// DefaultCacheSize is the number of series kept in memory.
const DefaultCacheSize = 3

// NewCache creates an LRU volume cache. size <= 0 uses
// DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	inner, err := lru.New[string, *Volume](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Cache{inner: inner}
}

// Get returns the cached volume for a series, if any.
func (c *Cache) Get(seriesUID string) (*Volume, bool) {
	return c.inner.Get(seriesUID)
}

// Add stores a built volume under its series UID.
func (c *Cache) Add(seriesUID string, v *Volume) {
	c.inner.Add(seriesUID, v)
}

// Remove drops one series.
func (c *Cache) Remove(seriesUID string) {
	c.inner.Remove(seriesUID)
}

// Purge drops everything; used when the viewing context goes away.
func (c *Cache) Purge() {
	c.inner.Purge()
}

// Len returns the number of cached volumes.
func (c *Cache) Len() int { return c.inner.Len() }
