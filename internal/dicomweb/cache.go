package dicomweb

import (
	"context"
	"sync"

	"github.com/prateek-tiwarii/synpacs/internal/series"
	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// ByteCache stores fetched instance payloads by SOP instance UID so a
// rebuild of the same series never re-downloads. It is safe for
// concurrent use.
type ByteCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

// NewByteCache returns an empty cache.
func NewByteCache() *ByteCache {
	return &ByteCache{store: make(map[string][]byte)}
}

// Get returns the cached bytes, if present.
func (c *ByteCache) Get(uid string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[uid]
	return b, ok
}

// Put stores one payload.
func (c *ByteCache) Put(uid string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[uid] = data
}

// Purge drops everything.
func (c *ByteCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string][]byte)
}

// Fetcher adapts the client plus cache into the volume builder's fetch
// function. Failures are returned as-is; the caller retries through
// Retry, never automatically.
func (c *Client) Fetcher(cache *ByteCache) volume.FetchFunc {
	return func(ctx context.Context, inst series.Instance) ([]byte, error) {
		if cache != nil {
			if b, ok := cache.Get(inst.SOPInstanceUID); ok {
				return b, nil
			}
		}
		b, err := c.FetchInstanceBytes(ctx, inst.SOPInstanceUID)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Put(inst.SOPInstanceUID, b)
		}
		return b, nil
	}
}

// Retry is the manual retry handle for a failed instance fetch: it
// fetches again, bypassing the cache, and on success replaces any
// cached entry. On failure the cache is left as it was.
func (c *Client) Retry(ctx context.Context, cache *ByteCache, sopInstanceUID string) ([]byte, error) {
	b, err := c.FetchInstanceBytes(ctx, sopInstanceUID)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Put(sopInstanceUID, b)
	}
	return b, nil
}
