package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

// MultiLevelCache layers a small in-process cache over a shared backend.
// Actor lookups during inbox bursts hit the same handful of keys, so the
// local level absorbs most of the redis round trips.
type MultiLevelCache struct {
	backend  CacheService
	localTTL time.Duration

	mu      sync.RWMutex
	entries map[string]localEntry
}

// NewMultiLevelCache wraps backend with an in-process level. Local
// entries live at most localTTL, independent of the backend expiration,
// so a remote update is picked up after that window at worst.
func NewMultiLevelCache(backend CacheService, localTTL time.Duration) *MultiLevelCache {
	c := &MultiLevelCache{
		backend:  backend,
		localTTL: localTTL,
		entries:  make(map[string]localEntry),
	}
	go c.janitor()
	return c
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return json.Unmarshal(entry.data, dest)
	}

	if err := c.backend.Get(ctx, key, dest); err != nil {
		return err
	}

	// Promote into the local level.
	if data, err := json.Marshal(dest); err == nil {
		c.store(key, data)
	}
	return nil
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := c.backend.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	if data, err := json.Marshal(value); err == nil {
		c.store(key, data)
	}
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return c.backend.Delete(ctx, key)
}

func (c *MultiLevelCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return true, nil
	}
	return c.backend.Exists(ctx, key)
}

func (c *MultiLevelCache) store(key string, data []byte) {
	c.mu.Lock()
	c.entries[key] = localEntry{
		data:      data,
		expiresAt: time.Now().Add(c.localTTL),
	}
	c.mu.Unlock()
}

func (c *MultiLevelCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
