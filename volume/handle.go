package volume

import (
	"sync/atomic"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/voxel"
	"github.com/voxelbase/voxcache/vxb"
)

// Handle is one user's reference to a grid. File-backed handles point at a
// shared cache entry and track which tier this user occupies: a freshly
// discovered handle is a metadata user, Load promotes it to a tree user.
// Procedural handles wrap an in-memory grid, have no entry, and always
// count as loaded.
//
// A handle must be released exactly once. Copies are independent users
// and are released separately.
type Handle struct {
	cache *Cache
	entry *entry
	grid  *voxel.Grid

	// loaded is this handle's own tier flag, separate from the entry's
	// loaded state: the entry can stay loaded for other users after this
	// handle unloads.
	loaded atomic.Bool
}

// NewProceduralGrid wraps a grid that exists only in memory.
func NewProceduralGrid(g *voxel.Grid) *Handle {
	h := &Handle{grid: g}
	h.loaded.Store(true)
	return h
}

// Name returns the grid name.
func (h *Handle) Name() string {
	return h.grid.Name()
}

// Kind returns the grid's element kind.
func (h *Handle) Kind() voxel.Kind {
	return h.grid.Kind()
}

// Grid returns the shared grid object. Its tree comes and goes with the
// cache's loaded state; the metadata is always present.
func (h *Handle) Grid() *voxel.Grid {
	return h.grid
}

// IsLoaded reports whether this handle holds the tree tier. Other users
// may keep the shared tree resident after this handle unloads; IsLoaded
// still turns false then.
func (h *Handle) IsLoaded() bool {
	if h.entry == nil {
		return true
	}
	return h.loaded.Load()
}

// ErrorMessage returns the load failure recorded for this grid, or the
// empty string. Handles that have not loaded report nothing even when the
// shared entry carries an error.
func (h *Handle) ErrorMessage() string {
	if h.entry == nil {
		return ""
	}
	if !h.loaded.Load() {
		return ""
	}
	return h.entry.errMsg
}

// Load makes the grid's tree resident and promotes this handle to a tree
// user. It returns true when the grid is usable afterwards. A failed read
// still marks the entry loaded, so the error is reported instead of
// retrying the file on every call; owner names the volume in log output.
func (h *Handle) Load(owner string) bool {
	h.load(owner)
	return h.ErrorMessage() == ""
}

func (h *Handle) load(owner string) {
	if h.entry == nil || h.loaded.Load() {
		return
	}

	e := h.entry
	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have loaded through this same handle while
	// we waited on the entry.
	if h.loaded.Load() {
		return
	}

	h.cache.changeToTreeUser(e)
	if e.loaded.Load() {
		h.loaded.Store(true)
		return
	}

	monitoring.Logf("[FileCache] volume %q: load grid %q from %s", owner, e.grid.Name(), e.key.path)

	e.errMsg = ""
	tree, err := readEntryTree(e.key)
	if err != nil {
		e.errMsg = err.Error()
		h.cache.noteTreeRead(e, 0)
		monitoring.Logf("[FileCache] volume %q: grid %q: %s", owner, e.grid.Name(), e.errMsg)
	} else {
		e.grid.SetTree(tree)
		h.cache.noteTreeRead(e, tree.MemUsage())
	}

	e.loaded.Store(true)
	h.loaded.Store(true)
}

func readEntryTree(key entryKey) (*voxel.Tree, error) {
	f, err := vxb.Open(key.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadTree(key.name)
}

// Unload gives up this handle's claim on the tree and returns it to the
// metadata tier. The shared tree stays resident while other tree users
// remain and is dropped with the last one.
func (h *Handle) Unload(owner string) {
	if h.entry == nil || !h.loaded.Load() {
		return
	}

	e := h.entry
	e.mu.Lock()
	defer e.mu.Unlock()

	if !h.loaded.Load() {
		return
	}

	monitoring.Logf("[FileCache] volume %q: unload grid %q", owner, e.grid.Name())
	h.cache.changeToMetadataUser(e)
	h.loaded.Store(false)
}

// Copy registers a new independent user at the same tier as h.
func (h *Handle) Copy() *Handle {
	loaded := h.loaded.Load()
	n := &Handle{cache: h.cache, entry: h.entry, grid: h.grid}
	n.loaded.Store(loaded)
	if h.entry != nil {
		h.cache.copyUser(h.entry, loaded)
	}
	return n
}

// Release drops this handle's user count, evicting the entry when it was
// the last user. Releasing twice is safe; any other use after Release is
// not.
func (h *Handle) Release() {
	if h.entry != nil {
		h.cache.removeUser(h.entry, h.loaded.Load())
		h.entry = nil
	}
	h.cache = nil
	h.grid = nil
}
