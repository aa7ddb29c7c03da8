package volume

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/voxelbase/voxcache/internal/fsutil"
	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/vxb"
)

// GridList is a volume's ordered collection of grid handles, discovered
// lazily from a container file. Discovery runs once; failures stick until
// Unload so a broken file is reported instead of re-read every frame.
type GridList struct {
	mu     sync.Mutex
	loaded atomic.Bool

	// path is the resolved file discovery ran against, empty before.
	path   string
	errMsg string
	grids  []*Handle
}

// discover enumerates the container at path and registers a metadata user
// per grid. Concurrent callers race to do the work once.
func (l *GridList) discover(c *Cache, owner, path string) {
	if l.loaded.Load() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded.Load() {
		return
	}

	monitoring.Logf("[Volume] %q: discover grids in %s", owner, path)
	l.path = path

	if !fsutil.Exists(path) {
		l.errMsg = filepath.Base(path) + " not found"
		l.loaded.Store(true)
		return
	}

	f, err := vxb.Open(path)
	if err != nil {
		l.errMsg = err.Error()
		l.loaded.Store(true)
		return
	}
	defer f.Close()

	metas, err := f.Grids()
	if err != nil {
		// Keep whatever enumerated before the failure.
		l.errMsg = err.Error()
	}
	for _, g := range metas {
		l.grids = append(l.grids, c.addMetadataUser(path, g))
	}
	l.loaded.Store(true)
}

// copyFrom fills a fresh list with copies of another list's handles, each
// registered at its current tier.
func (l *GridList) copyFrom(other *GridList) {
	other.mu.Lock()
	defer other.mu.Unlock()

	l.path = other.path
	l.errMsg = other.errMsg
	l.grids = make([]*Handle, 0, len(other.grids))
	for _, h := range other.grids {
		l.grids = append(l.grids, h.Copy())
	}
	l.loaded.Store(other.loaded.Load())
}

// Unload releases every handle and returns the list to undiscovered, so
// the next access re-reads the file.
func (l *GridList) Unload(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path != "" {
		monitoring.Logf("[Volume] %q: unload grids of %s", owner, l.path)
	}
	for _, h := range l.grids {
		h.Release()
	}
	l.grids = nil
	l.path = ""
	l.errMsg = ""
	l.loaded.Store(false)
}

// IsLoaded reports whether discovery ran, successfully or not.
func (l *GridList) IsLoaded() bool {
	return l.loaded.Load()
}

// Error returns the list's failure state: a discovery error, or the most
// recently reported grid load failure.
func (l *GridList) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

func (l *GridList) setError(msg string) {
	l.mu.Lock()
	l.errMsg = msg
	l.mu.Unlock()
}

// Filepath returns the resolved file discovery ran against.
func (l *GridList) Filepath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Len returns the number of discovered grids.
func (l *GridList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.grids)
}

// At returns the i'th handle in file order, nil when out of range.
func (l *GridList) At(i int) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.grids) {
		return nil
	}
	return l.grids[i]
}

// Find returns the handle with the given grid name, nil when absent.
func (l *GridList) Find(name string) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range l.grids {
		if h.Name() == name {
			return h
		}
	}
	return nil
}
