package scriptstore

import (
	"time"

	"github.com/iotaledger/hive.go/runtime/syncutils"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

const (
	defaultCacheSize = 1000
	defaultCacheTTL  = time.Hour
)

// ScriptCache keeps decoded scripts by signal type.
type ScriptCache struct {
	mu      syncutils.RWMutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	script    *sigscript.Script
	timestamp time.Time
}

// NewScriptCache creates a cache holding at most maxSize scripts for ttl.
// Non-positive values select the defaults.
func NewScriptCache(maxSize int, ttl time.Duration) *ScriptCache {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &ScriptCache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached script of signalType, or nil.
func (c *ScriptCache) Get(signalType string) *sigscript.Script {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[signalType]
	if !ok || time.Since(entry.timestamp) > c.ttl {
		return nil
	}

	return entry.script
}

// Put caches script under signalType.
func (c *ScriptCache) Put(signalType string, script *sigscript.Script) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[signalType] = &cacheEntry{
		script:    script,
		timestamp: time.Now(),
	}

	if len(c.entries) > c.maxSize {
		c.evict()
	}
}

// Invalidate drops signalType from the cache.
func (c *ScriptCache) Invalidate(signalType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, signalType)
}

// Len returns the number of cached scripts, expired ones included.
func (c *ScriptCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// evict removes expired entries, then the oldest ones until the cache fits.
func (c *ScriptCache) evict() {
	cutoff := time.Now().Add(-c.ttl)
	for key, entry := range c.entries {
		if entry.timestamp.Before(cutoff) {
			delete(c.entries, key)
		}
	}

	for len(c.entries) > c.maxSize {
		var (
			oldestKey string
			oldest    time.Time
			found     bool
		)
		for key, entry := range c.entries {
			if !found || entry.timestamp.Before(oldest) {
				oldestKey, oldest, found = key, entry.timestamp, true
			}
		}
		delete(c.entries, oldestKey)
	}
}
