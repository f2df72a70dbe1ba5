package logtree

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/badger-rl/logreader/internal/value"
)

// DefaultRepresentationCacheCapacity is the per-Accessor bound on cached
// representation objects, matching the reference implementation's default
// FIFO capacity of 200 (§4.G, §9 Design Notes).
const DefaultRepresentationCacheCapacity = 200

// ReprCache is a bounded absIndex -> representation map. golang-lru's true
// LRU eviction is substituted for the reference's FIFO, as explicitly
// permitted by spec §9 ("implementations may substitute true LRU so long
// as scenario 1 still passes").
type ReprCache struct {
	cache *lru.Cache
}

// NewReprCache returns a cache bounded at capacity.
func NewReprCache(capacity int) *ReprCache {
	c, err := lru.New(capacity)
	if err != nil {
		// lru.New only errors on capacity <= 0; callers always pass a
		// positive default, so fall back to the documented default rather
		// than propagating a construction-time error through every
		// Accessor constructor.
		c, _ = lru.New(DefaultRepresentationCacheCapacity)
	}
	return &ReprCache{cache: c}
}

// Get returns the cached representation for absIndex, if present.
func (c *ReprCache) Get(absIndex uint64) (value.Value, bool) {
	v, ok := c.cache.Get(absIndex)
	if !ok {
		return value.Value{}, false
	}
	return v.(value.Value), true
}

// Put stores a representation for absIndex, evicting the least recently
// used entry if the cache is at capacity.
func (c *ReprCache) Put(absIndex uint64, v value.Value) {
	c.cache.Add(absIndex, v)
}

// IsParsed reports whether absIndex currently has a cached representation.
func (c *ReprCache) IsParsed(absIndex uint64) bool {
	return c.cache.Contains(absIndex)
}
