package engine

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/piwi3910/RectFit/internal/model"
)

// OutlineKey returns a content hash of the outline's vertex coordinates.
// Outlines with identical vertices in identical order share a key.
func OutlineKey(o model.Outline) uint64 {
	d := xxhash.New()
	writeOutline(d, o)
	return d.Sum64()
}

func writeOutline(d *xxhash.Digest, o model.Outline) {
	var buf [16]byte
	for _, p := range o {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		_, _ = d.Write(buf[:])
	}
}

// gridKey also folds in the margin, since grids built with different
// margins classify cells differently.
func gridKey(o model.Outline, margin float64) uint64 {
	d := xxhash.New()
	writeOutline(d, o)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(margin))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// GridCache holds SpatialGrids for repeated fits against the same
// outlines. The caller owns the cache and decides when to invalidate it.
// Safe for concurrent use.
type GridCache struct {
	mu    sync.RWMutex
	grids map[uint64]*SpatialGrid
}

func NewGridCache() *GridCache {
	return &GridCache{grids: make(map[uint64]*SpatialGrid)}
}

// Get returns the cached grid for key, if any.
func (c *GridCache) Get(key uint64) (*SpatialGrid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.grids[key]
	return g, ok
}

// Put stores a grid under key.
func (c *GridCache) Put(key uint64, g *SpatialGrid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grids[key] = g
}

// GetOrBuild returns the grid for the outline and margin, building and
// caching it on a miss.
func (c *GridCache) GetOrBuild(o model.Outline, margin float64) *SpatialGrid {
	key := gridKey(o, margin)
	if g, ok := c.Get(key); ok {
		return g
	}
	g := NewSpatialGrid(o, margin)
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.grids[key]; ok {
		return existing
	}
	c.grids[key] = g
	return g
}

// Invalidate drops every grid built for the outline, whatever its margin.
// It returns the number of entries removed.
func (c *GridCache) Invalidate(o model.Outline) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, g := range c.grids {
		if sameOutline(g.outline, o) {
			delete(c.grids, key)
			removed++
		}
	}
	return removed
}

// Clear empties the cache.
func (c *GridCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grids = make(map[uint64]*SpatialGrid)
}

// Len returns the number of cached grids.
func (c *GridCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grids)
}

func sameOutline(a, b model.Outline) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
