// Package quotecache memoizes normalized quote responses for a short TTL,
// keyed by a deterministic fingerprint of the request parameters. Entries
// are evicted lazily on the first lookup past expiry; no sweeper runs.
package quotecache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// entry pairs a stored value with its expiry instant.
type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a process-scoped TTL store. Nothing survives a restart, and
// errors are never cached.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is swappable for tests.
	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the stored value for fingerprint. "Never stored" and "stored
// but expired" are indistinguishable to the caller; an expired entry is
// removed on the failed lookup.
func (c *Cache) Get(fingerprint string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, fingerprint)
		return nil, false
	}
	return e.value, true
}

// Put stores value under fingerprint for ttl.
func (c *Cache) Put(fingerprint string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Len reports the number of live-or-expired entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint builds the deterministic cache key for a quote request:
// scope (which encodes the network-relevant endpoint), asset pair, exact
// amount, and caller address.
func Fingerprint(scope, fromAsset, toAsset string, amount uint64, callerAddress string) string {
	return strings.Join([]string{
		scope,
		fromAsset,
		toAsset,
		strconv.FormatUint(amount, 10),
		callerAddress,
	}, ":")
}
