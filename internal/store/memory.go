package store

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-summary/internal/weather"
)

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Coalesced int64 // lookups whose compute result was shared between callers
	Evictions int64
	Entries   int
}

type cacheEntry struct {
	key      string
	summary  weather.Summary
	storedAt time.Time
}

// MemoryCache is a concurrency-safe, bounded in-memory summary cache.
// Keys are used as given: "London" and "london" are distinct entries.
type MemoryCache struct {
	mu sync.Mutex

	// key: raw city string, value: element holding *cacheEntry
	items map[string]*list.Element
	// most recently used at the front
	order *list.List

	// retention configuration
	maxEntries int           // 0 = unlimited
	ttl        time.Duration // 0 = never expire

	group singleflight.Group
	now   func() time.Time

	hits      *atomic.Int64
	misses    *atomic.Int64
	coalesced *atomic.Int64
	evictions *atomic.Int64
}

// NewMemoryCache creates a new MemoryCache with optional limits.
// If maxEntries or ttl is <= 0, that limit is disabled.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		hits:       atomic.NewInt64(0),
		misses:     atomic.NewInt64(0),
		coalesced:  atomic.NewInt64(0),
		evictions:  atomic.NewInt64(0),
	}
}

// Get returns the cached summary for key if present and not expired.
func (c *MemoryCache) Get(key string) (weather.Summary, bool) {
	summary, ok := c.lookup(key)
	if ok {
		c.hits.Inc()
	}
	return summary, ok
}

// GetOrCompute returns the cached summary for key, or runs compute and caches
// its result. Concurrent misses for the same key share one compute call.
// A failed compute caches nothing.
func (c *MemoryCache) GetOrCompute(key string, compute func() (weather.Summary, error)) (weather.Summary, error) {
	if summary, ok := c.Get(key); ok {
		return summary, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// A flight that finished between our lookup and Do may have filled it.
		if summary, ok := c.lookup(key); ok {
			c.hits.Inc()
			return summary, nil
		}

		c.misses.Inc()
		summary, err := compute()
		if err != nil {
			return weather.Summary{}, err
		}
		c.Set(key, summary)
		return summary, nil
	})
	if shared {
		c.coalesced.Inc()
	}
	if err != nil {
		return weather.Summary{}, err
	}
	return v.(weather.Summary), nil
}

// Recompute runs compute for key even when a fresh entry exists and stores the
// result. It joins a computation already in flight for key, so a refresh and
// a concurrent miss share one compute call. A failed compute keeps the old entry.
func (c *MemoryCache) Recompute(key string, compute func() (weather.Summary, error)) (weather.Summary, error) {
	v, err, shared := c.group.Do(key, func() (any, error) {
		summary, err := compute()
		if err != nil {
			return weather.Summary{}, err
		}
		c.Set(key, summary)
		return summary, nil
	})
	if shared {
		c.coalesced.Inc()
	}
	if err != nil {
		return weather.Summary{}, err
	}
	return v.(weather.Summary), nil
}

// Set stores summary under key, replacing any previous value and evicting the
// least recently used entry when the cache is full.
func (c *MemoryCache) Set(key string, summary weather.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.summary = summary
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{
		key:      key,
		summary:  summary,
		storedAt: c.now(),
	})

	// Enforce retention by count.
	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
		c.evictions.Inc()
	}
}

// Delete removes key from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// PurgeExpired drops every expired entry and returns how many were removed.
func (c *MemoryCache) PurgeExpired() int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*cacheEntry), now) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	c.evictions.Add(int64(removed))
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the current counters.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Coalesced: c.coalesced.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
	}
}

func (c *MemoryCache) lookup(key string) (weather.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return weather.Summary{}, false
	}
	entry := el.Value.(*cacheEntry)
	if c.expired(entry, c.now()) {
		c.removeElement(el)
		c.evictions.Inc()
		return weather.Summary{}, false
	}
	c.order.MoveToFront(el)
	return entry.summary, true
}

func (c *MemoryCache) expired(entry *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.storedAt) >= c.ttl
}

// removeElement must be called with mu held.
func (c *MemoryCache) removeElement(el *list.Element) {
	entry := c.order.Remove(el).(*cacheEntry)
	delete(c.items, entry.key)
}
