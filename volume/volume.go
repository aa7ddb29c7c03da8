package volume

import "math"

// Volume is one volume object: a container path, display and sequence
// settings, and the lazily discovered grid list. Volumes sharing a cache
// share grid data; an evaluated copy of a volume costs two user counts,
// not a second file read.
type Volume struct {
	cache *Cache
	name  string
	path  string

	// IsSequence animates the volume over a numbered file sequence.
	// Frame mapping is controlled by the remaining sequence fields, see
	// ResolveFrame.
	IsSequence    bool
	SequenceMode  SequenceMode
	FrameStart    int
	FrameDuration int
	FrameOffset   int

	// ActiveIndex selects the display grid, clamped into range on use.
	ActiveIndex int

	frame int
	grids GridList
}

// NewVolume creates a volume reading path through cache. The name appears
// in log messages only.
func NewVolume(cache *Cache, name, path string) *Volume {
	return &Volume{cache: cache, name: name, path: path}
}

// Name returns the volume's display name.
func (v *Volume) Name() string {
	return v.name
}

// Filepath returns the configured container path, with any frame number
// unsubstituted.
func (v *Volume) Filepath() string {
	return v.path
}

// Frame returns the resolved sequence frame, FrameNone when the current
// scene frame has no file. Non-sequence volumes stay at frame zero.
func (v *Volume) Frame() int {
	return v.frame
}

// ResolvedPath returns the file this volume reads at its current frame.
// Empty when the frame has no file.
func (v *Volume) ResolvedPath() string {
	if !v.IsSequence {
		return v.path
	}
	if v.frame == FrameNone {
		return ""
	}
	return SequencePath(v.path, v.frame)
}

// EvalFrame updates the volume for a scene frame. When the resolved
// sequence frame changes, the grids are unloaded so the next access reads
// the new file.
func (v *Volume) EvalFrame(sceneFrame int) {
	if !v.IsSequence {
		return
	}
	frame := ResolveFrame(v.SequenceMode, sceneFrame, v.FrameStart, v.FrameDuration, v.FrameOffset)
	if frame != v.frame {
		v.frame = frame
		v.Unload()
	}
}

// IsLoaded reports whether the volume needs no file work: it has no file,
// or discovery already ran.
func (v *Volume) IsLoaded() bool {
	return v.path == "" || v.grids.IsLoaded()
}

// Load discovers the volume's grids if not yet done and reports whether
// the volume is usable. Volumes without a file, and sequence frames with
// no file, load trivially with zero grids.
func (v *Volume) Load() bool {
	if v.path == "" {
		return true
	}
	if v.IsSequence && v.frame == FrameNone {
		return true
	}
	if v.grids.IsLoaded() {
		return v.grids.Error() == ""
	}
	v.grids.discover(v.cache, v.name, v.ResolvedPath())
	return v.grids.Error() == ""
}

// Unload releases all grid handles and forgets discovery state.
func (v *Volume) Unload() {
	v.grids.Unload(v.name)
}

// Error returns the volume's failure state, empty when healthy.
func (v *Volume) Error() string {
	return v.grids.Error()
}

// NumGrids loads the volume and returns its grid count. Grids enumerated
// before a discovery failure still count.
func (v *Volume) NumGrids() int {
	v.Load()
	return v.grids.Len()
}

// Grid returns the i'th grid handle in file order, nil when out of range.
func (v *Volume) Grid(i int) *Handle {
	v.Load()
	return v.grids.At(i)
}

// ActiveGrid returns the display grid selected by ActiveIndex, clamped
// into range. Nil when the volume has no grids.
func (v *Volume) ActiveGrid() *Handle {
	v.Load()
	n := v.grids.Len()
	if n == 0 {
		return nil
	}
	idx := v.ActiveIndex
	if idx < 0 {
		idx = 0
	} else if idx > n-1 {
		idx = n - 1
	}
	return v.grids.At(idx)
}

// FindGrid returns the handle with the given grid name, nil when absent.
func (v *Volume) FindGrid(name string) *Handle {
	v.Load()
	return v.grids.Find(name)
}

// LoadGrid makes a grid's tree resident through its handle. A failure is
// copied onto the volume so whole-volume error reporting sees it; the
// handle's own state stays authoritative per grid.
func (v *Volume) LoadGrid(h *Handle) bool {
	if h == nil {
		return false
	}
	if h.Load(v.name) {
		return true
	}
	v.grids.setError(h.ErrorMessage())
	return false
}

// UnloadGrid returns a grid to the metadata tier.
func (v *Volume) UnloadGrid(h *Handle) {
	if h != nil {
		h.Unload(v.name)
	}
}

// BoundBox returns the world-space bounds of all grids' active voxels,
// loading every grid to answer. Volumes with no contributing grids get
// the fallback unit cube from -1 to 1 on each axis.
func (v *Volume) BoundBox() (min, max [3]float64) {
	min = [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	max = [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}

	found := false
	for i := 0; i < v.NumGrids(); i++ {
		h := v.Grid(i)
		v.LoadGrid(h)
		gmin, gmax, ok := GridBounds(h)
		if !ok {
			continue
		}
		found = true
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], gmin[a])
			max[a] = math.Max(max[a], gmax[a])
		}
	}
	if !found {
		return [3]float64{-1, -1, -1}, [3]float64{1, 1, 1}
	}
	return min, max
}

// CopyForEval returns an evaluation copy sharing the cache. Settings are
// duplicated and every grid handle is re-registered at its current tier.
func (v *Volume) CopyForEval() *Volume {
	n := &Volume{
		cache:         v.cache,
		name:          v.name,
		path:          v.path,
		IsSequence:    v.IsSequence,
		SequenceMode:  v.SequenceMode,
		FrameStart:    v.FrameStart,
		FrameDuration: v.FrameDuration,
		FrameOffset:   v.FrameOffset,
		ActiveIndex:   v.ActiveIndex,
		frame:         v.frame,
	}
	n.grids.copyFrom(&v.grids)
	return n
}
