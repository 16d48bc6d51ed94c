package data

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const cacheSweepInterval = 5 * time.Minute

// CacheEntry is one cached scheme response.
type CacheEntry struct {
	Response  *SchemeResponse
	ExpiresAt time.Time
}

// CacheStats reports how the price cache has been used since start.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// ResponseCache keeps fetched NAV histories in memory so repeated
// simulations over the same schemes do not refetch them.
//
// The shared instance is disabled when API_ENV=production.
type ResponseCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	schemes map[string]CacheEntry

	hits, misses atomic.Uint64
}

var (
	sharedCache     *ResponseCache
	sharedCacheOnce sync.Once
)

// GetCache returns the shared cache, or nil when caching is disabled.
// Enable it with ENABLE_PRICE_CACHE=true; PRICE_CACHE_TTL overrides the
// one hour default.
func GetCache() *ResponseCache {
	if os.Getenv("ENABLE_PRICE_CACHE") != "true" || os.Getenv("API_ENV") == "production" {
		return nil
	}
	sharedCacheOnce.Do(func() {
		sharedCache = NewResponseCache(cacheTTLFromEnv())
		go sharedCache.sweep(cacheSweepInterval)
	})
	return sharedCache
}

func cacheTTLFromEnv() time.Duration {
	if v := os.Getenv("PRICE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return time.Hour
}

// NewResponseCache returns a standalone cache without a sweep loop.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		ttl:     ttl,
		now:     time.Now,
		schemes: make(map[string]CacheEntry),
	}
}

// Get returns a cached response that has not expired.
func (c *ResponseCache) Get(key string) (*SchemeResponse, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.schemes[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.ExpiresAt) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.Response, true
}

// Set stores a response for the cache's TTL.
func (c *ResponseCache) Set(key string, resp *SchemeResponse) {
	if c == nil {
		return
	}
	entry := CacheEntry{Response: resp, ExpiresAt: c.now().Add(c.ttl)}
	c.mu.Lock()
	c.schemes[key] = entry
	c.mu.Unlock()
}

// Len counts entries, expired ones included.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemes)
}

// Stats snapshots the entry count and lookup counters. A nil cache reports zeros.
func (c *ResponseCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Entries: c.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Clear drops every entry; counters are kept.
func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	clear(c.schemes)
	c.mu.Unlock()
}

func (c *ResponseCache) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		c.evictExpired(c.now())
	}
}

// evictExpired removes entries that expired before now and returns how many.
func (c *ResponseCache) evictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, entry := range c.schemes {
		if now.After(entry.ExpiresAt) {
			delete(c.schemes, key)
			n++
		}
	}
	return n
}

// GenerateCacheKey derives the cache key of a scheme fetch: the same scheme
// code on the same host always maps to the same key.
func GenerateCacheKey(baseURL, code string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(baseURL, "/") + ":" + strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}
