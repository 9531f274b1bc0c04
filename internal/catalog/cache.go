package catalog

import (
	"strings"
	"sync"
	"time"
)

// freshnessWindow bounds how long a cached resolution is served without a
// new catalog call. A stale entry is treated as absent, never actively
// evicted: the next successful lookup silently replaces it.
const freshnessWindow = 24 * time.Hour

type cardEntry struct {
	card      Card
	fetchedAt time.Time
}

type editionEntry struct {
	edition   Edition
	fetchedAt time.Time
}

// cardCache maps lower-cased (queried name, queried edition) pairs to
// canonical cards. Process-wide: catalog identity is global, so rows are
// shared by every space.
type cardCache struct {
	mu      sync.RWMutex
	entries map[string]cardEntry
	now     func() time.Time
}

func newCardCache(now func() time.Time) *cardCache {
	return &cardCache{entries: make(map[string]cardEntry), now: now}
}

// cardCacheKey builds the cache key for a queried (name, edition) pair.
func cardCacheKey(name, editionID string) string {
	return strings.ToLower(name) + "\x00" + strings.ToLower(editionID)
}

func (c *cardCache) get(key string) (Card, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetchedAt) > freshnessWindow {
		return Card{}, false
	}
	return entry.card, true
}

func (c *cardCache) put(key string, card Card) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cardEntry{card: card, fetchedAt: c.now()}
}

// editionCache maps lower-cased identifiers (codes or free-text names) to
// editions. A resolution is stored under both the queried identifier and
// the canonical code so future lookups of either form short-circuit.
type editionCache struct {
	mu      sync.RWMutex
	entries map[string]editionEntry
	now     func() time.Time
}

func newEditionCache(now func() time.Time) *editionCache {
	return &editionCache{entries: make(map[string]editionEntry), now: now}
}

func (c *editionCache) get(identifier string) (Edition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[identifier]
	if !ok || c.now().Sub(entry.fetchedAt) > freshnessWindow {
		return Edition{}, false
	}
	return entry.edition, true
}

func (c *editionCache) put(edition Edition, identifiers ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.now()
	for _, id := range identifiers {
		c.entries[id] = editionEntry{edition: edition, fetchedAt: at}
	}
}
