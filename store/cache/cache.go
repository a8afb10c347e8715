package cache

import (
	"sync"
	"time"
)

// Config holds the cache configuration.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	OnEviction      func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a small in-memory TTL cache. It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	config Config
	items  map[string]item
	done   chan struct{}
	closed sync.Once
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		config: config,
		items:  make(map[string]item),
		done:   make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOneLocked()
		}
	}
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if it, ok := c.items[key]; ok {
		delete(c.items, key)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.closed.Do(func() { close(c.done) })
}

// evictOneLocked drops an arbitrary entry to make room. Caller holds the lock.
func (c *Cache) evictOneLocked() {
	for key, it := range c.items {
		delete(c.items, key)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
		return
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, it := range c.items {
				if now.After(it.expiresAt) {
					delete(c.items, key)
					if c.config.OnEviction != nil {
						c.config.OnEviction(key, it.value)
					}
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
