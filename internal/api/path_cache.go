package api

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"starlane/internal/galaxy"
	"starlane/internal/graph"
)

// pathCacheKey identifies one route query. Empire-less queries use the full
// lane network.
type pathCacheKey struct {
	Empire    galaxy.EmpireID
	HasEmpire bool
	From, To  graph.NodeID
}

// pathCacheEntry holds a computed route. path is nil when none exists.
type pathCacheEntry struct {
	path *graph.Path
	cost int
}

// PathCache memoises route queries between ticks. Claims change masks every
// tick, so the whole cache is dropped when the tick advances. A
// singleflight.Group prevents duplicate searches for the same key.
type PathCache struct {
	mu      sync.RWMutex
	tick    uint64
	entries map[pathCacheKey]pathCacheEntry
	group   singleflight.Group

	hits, misses uint64
}

// NewPathCache creates an empty path cache.
func NewPathCache() *PathCache {
	return &PathCache{entries: make(map[pathCacheKey]pathCacheEntry)}
}

// Get returns a cached route computed at tick.
func (pc *PathCache) Get(tick uint64, key pathCacheKey) (pathCacheEntry, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if tick != pc.tick {
		return pathCacheEntry{}, false
	}
	e, ok := pc.entries[key]
	return e, ok
}

// Put stores a route computed at tick. Entries from older ticks are dropped first.
func (pc *PathCache) Put(tick uint64, key pathCacheKey, e pathCacheEntry) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if tick < pc.tick {
		return
	}
	if tick > pc.tick {
		clear(pc.entries)
		pc.tick = tick
	}
	pc.entries[key] = e
}

// Invalidate drops every entry older than tick.
func (pc *PathCache) Invalidate(tick uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if tick > pc.tick {
		clear(pc.entries)
		pc.tick = tick
	}
}

// Stats returns hit and miss counts.
func (pc *PathCache) Stats() (hits, misses uint64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.hits, pc.misses
}

// Lookup returns the route for key at tick, running search on a miss.
// Concurrent lookups of the same key at the same tick share one search.
func (pc *PathCache) Lookup(tick uint64, key pathCacheKey, search func() pathCacheEntry) pathCacheEntry {
	if e, ok := pc.Get(tick, key); ok {
		pc.count(true)
		return e
	}
	sfKey := fmt.Sprintf("%d:%d:%t:%d:%d", tick, key.Empire, key.HasEmpire, key.From, key.To)
	v, _, _ := pc.group.Do(sfKey, func() (any, error) {
		if e, ok := pc.Get(tick, key); ok {
			return e, nil
		}
		pc.count(false)
		e := search()
		pc.Put(tick, key, e)
		return e, nil
	})
	return v.(pathCacheEntry)
}

func (pc *PathCache) count(hit bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if hit {
		pc.hits++
	} else {
		pc.misses++
	}
}
