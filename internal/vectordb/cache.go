package vectordb

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKey derives a content-addressed cache key from the raw file bytes
// and the embedding model name. Identical file content indexed with a
// different model gets a different key.
func CacheKey(fileBytes []byte, modelName string) string {
	h := sha256.New()
	h.Write(fileBytes)
	h.Write([]byte{0})
	h.Write([]byte(modelName))
	return hex.EncodeToString(h.Sum(nil))
}

// IndexCache memoizes built vector stores by content-addressed key, so
// repeated questions against the same file reuse the index instead of
// re-embedding every chunk. Concurrent requests for the same key share a
// single build via singleflight.
type IndexCache struct {
	group singleflight.Group

	mu     sync.RWMutex
	stores map[string]VectorStore
}

// NewIndexCache creates an empty IndexCache.
func NewIndexCache() *IndexCache {
	return &IndexCache{stores: make(map[string]VectorStore)}
}

// GetOrBuild returns the cached store for key, or runs build exactly once
// per key to produce it. Failed builds are not cached.
func (c *IndexCache) GetOrBuild(key string, build func() (VectorStore, error)) (VectorStore, error) {
	c.mu.RLock()
	store, ok := c.stores[key]
	c.mu.RUnlock()
	if ok {
		return store, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		store, ok := c.stores[key]
		c.mu.RUnlock()
		if ok {
			return store, nil
		}

		built, err := build()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.stores[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(VectorStore), nil
}

// Len returns the number of cached indexes.
func (c *IndexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores)
}
