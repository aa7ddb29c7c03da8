package volume

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/voxel"
)

// entryKey identifies one grid in one container file.
type entryKey struct {
	path string
	name string
}

// entry is the cache's record of one file-backed grid. All handles on the
// entry share the same grid object; the cache attaches and clears its tree
// as the entry moves between the loaded and metadata-only states.
type entry struct {
	key  entryKey
	grid *voxel.Grid

	// mu serializes tree I/O for this entry only, so loads of different
	// grids never contend.
	mu sync.Mutex

	// loaded flips true once a load attempt finished, including failed
	// ones. The store happens after the tree attach and error message
	// writes, so a true observation implies both are visible.
	loaded atomic.Bool
	errMsg string

	// User counts, guarded by the cache mutex. Metadata users only need
	// the grid's name, kind and transform; tree users keep the voxel
	// data resident.
	metaUsers int
	treeUsers int

	// loadedBytes is the resident size accounted for this entry's tree,
	// guarded by the cache mutex.
	loadedBytes int64
}

// CacheOptions tunes cache behavior.
type CacheOptions struct {
	// StrictClose makes Close panic on leaked handles instead of
	// returning an error.
	StrictClose bool
}

// Cache deduplicates file-backed grids across every volume that shares it.
// Two volumes reading the same grid from the same file get handles on one
// entry, so the tree is read once and freed when the last user lets go.
type Cache struct {
	mu      sync.Mutex
	entries map[entryKey]*entry

	strictClose bool

	treeReads     int64
	treeEvictions int64
	residentBytes int64
}

// NewCache creates an empty cache with default options.
func NewCache() *Cache {
	return NewCacheWithOptions(CacheOptions{})
}

// NewCacheWithOptions creates an empty cache.
func NewCacheWithOptions(opts CacheOptions) *Cache {
	return &Cache{
		entries:     make(map[entryKey]*entry),
		strictClose: opts.StrictClose,
	}
}

// addMetadataUser registers a metadata user for the grid named by path and
// g.Name(), creating the entry on first use. When the entry already exists
// the passed grid is discarded and the handle shares the cached one.
func (c *Cache) addMetadataUser(path string, g *voxel.Grid) *Handle {
	key := entryKey{path: path, name: g.Name()}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, grid: g}
		c.entries[key] = e
	}
	e.metaUsers++
	c.mu.Unlock()

	return &Handle{cache: c, entry: e, grid: e.grid}
}

// copyUser registers one more user at the given tier.
func (c *Cache) copyUser(e *entry, treeUser bool) {
	c.mu.Lock()
	if treeUser {
		e.treeUsers++
	} else {
		e.metaUsers++
	}
	c.mu.Unlock()
}

// removeUser drops one user at the given tier and evicts whatever the
// remaining users no longer need.
func (c *Cache) removeUser(e *entry, treeUser bool) {
	c.mu.Lock()
	if treeUser {
		e.treeUsers--
	} else {
		e.metaUsers--
	}
	c.updateForRemoveUser(e)
	c.mu.Unlock()
}

// changeToTreeUser promotes one metadata user to a tree user. Promotion
// never evicts, so no update pass is needed.
func (c *Cache) changeToTreeUser(e *entry) {
	c.mu.Lock()
	e.metaUsers--
	e.treeUsers++
	c.mu.Unlock()
}

// changeToMetadataUser demotes one tree user to a metadata user.
func (c *Cache) changeToMetadataUser(e *entry) {
	c.mu.Lock()
	e.treeUsers--
	e.metaUsers++
	c.updateForRemoveUser(e)
	c.mu.Unlock()
}

// updateForRemoveUser applies the eviction rules after a user count went
// down: with no users left the entry is erased, with only metadata users
// left the tree is dropped and the entry returns to the unloaded state.
// Callers hold c.mu.
func (c *Cache) updateForRemoveUser(e *entry) {
	switch {
	case e.metaUsers == 0 && e.treeUsers == 0:
		c.evictTree(e)
		delete(c.entries, e.key)
	case e.treeUsers == 0:
		c.evictTree(e)
	}
}

// evictTree clears a loaded entry's tree and resets it to unloaded, so the
// next load reads the file again. Callers hold c.mu; no tree user exists,
// so no load for this entry can be in flight.
func (c *Cache) evictTree(e *entry) {
	if !e.loaded.Load() {
		return
	}
	e.grid.ClearTree()
	e.loaded.Store(false)
	c.residentBytes -= e.loadedBytes
	e.loadedBytes = 0
	c.treeEvictions++
}

// noteTreeRead records one backing-file read and the resident bytes it
// produced. Failed reads count with zero bytes.
func (c *Cache) noteTreeRead(e *entry, bytes int64) {
	c.mu.Lock()
	c.treeReads++
	c.residentBytes += bytes
	e.loadedBytes = bytes
	c.mu.Unlock()
}

// Close verifies that every handle was released. Leaked entries are logged
// one per line and reported as an error, or as a panic under StrictClose.
// A clean cache closes silently.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return nil
	}

	leaks := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		leaks = append(leaks, fmt.Sprintf("%s: grid %q (metadata=%d tree=%d)",
			k.path, k.name, e.metaUsers, e.treeUsers))
	}
	sort.Strings(leaks)
	for _, l := range leaks {
		monitoring.Logf("[FileCache] leaked user %s", l)
	}

	err := fmt.Errorf("volume cache closed with %d live entries", len(c.entries))
	if c.strictClose {
		panic(err)
	}
	return err
}
