package enrich

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	results   []Result
	timestamp time.Time
}

// Cache is a small LRU with per-entry TTL for search results. Solutions
// for the same error repeat across analyses, and the instant-answer API
// is slow enough to be worth skipping.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	keys    []string // LRU ordering, oldest first
	maxSize int
	ttl     time.Duration
}

func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		keys:    make([]string, 0),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func hashQuery(query string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Get returns the cached results for query if present and fresh.
func (c *Cache) Get(query string) ([]Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[hashQuery(query)]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.results, true
}

// Set stores results for query, evicting the oldest entry at capacity.
func (c *Cache) Set(query string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashQuery(query)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = cacheEntry{results: results, timestamp: time.Now()}
		c.moveToEnd(key)
		return
	}

	if len(c.keys) >= c.maxSize {
		oldest := c.keys[0]
		delete(c.entries, oldest)
		c.keys = c.keys[1:]
	}
	c.entries[key] = cacheEntry{results: results, timestamp: time.Now()}
	c.keys = append(c.keys, key)
}

func (c *Cache) moveToEnd(key string) {
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			c.keys = append(c.keys, key)
			return
		}
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
