package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    string
	expireAt time.Time
	access   time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

// MemoryCache implements Service using in-memory storage with LRU eviction.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]*memoryItem
	maxSize int
	now     func() time.Time
}

// MemoryOption configures Memory cache.
type MemoryOption func(*MemoryCache)

// WithMemoryMaxSize sets max cache size.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryCache) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates an in-memory cache. Expired items are dropped lazily on access.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	mc := &MemoryCache{
		data:    make(map[string]*memoryItem),
		maxSize: 1000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	item, ok := mc.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if item.expired(now) {
		delete(mc.data, key)
		return "", ErrCacheMiss
	}
	item.access = now
	return item.value, nil
}

func (mc *MemoryCache) Set(_ context.Context, key, value string, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	if _, exists := mc.data[key]; !exists && len(mc.data) >= mc.maxSize {
		mc.evictLRU(now)
	}
	if expiration <= 0 {
		expiration = 7 * 24 * time.Hour // default 7 days
	}
	mc.data[key] = &memoryItem{value: value, expireAt: now.Add(expiration), access: now}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
	}
	return nil
}

// Len returns the number of stored items, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

func (mc *MemoryCache) Close() error { return nil }

// evictLRU drops expired items first, then the least recently accessed one.
func (mc *MemoryCache) evictLRU(now time.Time) {
	for key, item := range mc.data {
		if item.expired(now) {
			delete(mc.data, key)
		}
	}
	if len(mc.data) < mc.maxSize {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, item := range mc.data {
		if oldestKey == "" || item.access.Before(oldest) {
			oldestKey = key
			oldest = item.access
		}
	}
	delete(mc.data, oldestKey)
}
