package voxel

import (
	"io"
	"math/bits"

	"github.com/google/btree"
)

const (
	// TileDim is the edge length of one tile. Tile origins are always
	// multiples of TileDim on every axis.
	TileDim = 8
	// TileVolume is the number of voxels in one tile.
	TileVolume = TileDim * TileDim * TileDim
)

// Per-tile fixed overhead beyond the value slab, for memory accounting:
// active mask plus origin and tree bookkeeping.
const tileOverheadBytes = 80

// tileMask holds one active bit per voxel of a tile.
type tileMask [TileVolume / 64]uint64

func (m *tileMask) set(i int) {
	m[i>>6] |= 1 << (uint(i) & 63)
}

func (m *tileMask) get(i int) bool {
	return m[i>>6]&(1<<(uint(i)&63)) != 0
}

func (m *tileMask) count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// tile stores TileVolume voxels. Within a tile X varies fastest, then Y,
// then Z: local index = x + y*TileDim + z*TileDim^2.
type tile[T Element] struct {
	origin Coord
	mask   tileMask
	values [TileVolume]T
}

func localIndex(c, origin Coord) int {
	return int(c.X-origin.X) | int(c.Y-origin.Y)<<3 | int(c.Z-origin.Z)<<6
}

func tileLess[T Element](a, b *tile[T]) bool {
	if a.origin.Z != b.origin.Z {
		return a.origin.Z < b.origin.Z
	}
	if a.origin.Y != b.origin.Y {
		return a.origin.Y < b.origin.Y
	}
	return a.origin.X < b.origin.X
}

// treeData is the typed sparse storage behind a Tree: tiles keyed by origin
// in a btree ordered by (Z, Y, X) for deterministic iteration.
type treeData[T Element] struct {
	background T
	tiles      *btree.BTreeG[*tile[T]]
	active     int64
}

func newTreeData[T Element](background T) *treeData[T] {
	return &treeData[T]{
		background: background,
		tiles:      btree.NewG[*tile[T]](16, tileLess[T]),
	}
}

// Set activates the voxel at c and stores v.
func (d *treeData[T]) Set(c Coord, v T) {
	origin := c.tileOrigin()
	t, ok := d.tiles.Get(&tile[T]{origin: origin})
	if !ok {
		t = &tile[T]{origin: origin}
		d.tiles.ReplaceOrInsert(t)
	}
	idx := localIndex(c, origin)
	if !t.mask.get(idx) {
		t.mask.set(idx)
		d.active++
	}
	t.values[idx] = v
}

// Get returns the value at c; inactive voxels read as the background.
func (d *treeData[T]) Get(c Coord) T {
	origin := c.tileOrigin()
	t, ok := d.tiles.Get(&tile[T]{origin: origin})
	if !ok {
		return d.background
	}
	idx := localIndex(c, origin)
	if !t.mask.get(idx) {
		return d.background
	}
	return t.values[idx]
}

// Active reports whether the voxel at c is active.
func (d *treeData[T]) Active(c Coord) bool {
	origin := c.tileOrigin()
	t, ok := d.tiles.Get(&tile[T]{origin: origin})
	if !ok {
		return false
	}
	return t.mask.get(localIndex(c, origin))
}

func (d *treeData[T]) activeCount() int64 {
	return d.active
}

func (d *treeData[T]) tileCount() int {
	return d.tiles.Len()
}

func (d *treeData[T]) activeBBox() (CoordBBox, bool) {
	box := EmptyBBox()
	d.tiles.Ascend(func(t *tile[T]) bool {
		for i := 0; i < TileVolume; i++ {
			if t.mask.get(i) {
				box.Extend(Coord{
					t.origin.X + int32(i&(TileDim-1)),
					t.origin.Y + int32((i>>3)&(TileDim-1)),
					t.origin.Z + int32(i>>6),
				})
			}
		}
		return true
	})
	if box.Empty() {
		return CoordBBox{}, false
	}
	return box, true
}

// treeStorage is the untyped view the Tree facade holds, so the cache,
// container, and monitor layers never type-switch on element types.
type treeStorage interface {
	activeCount() int64
	activeBBox() (CoordBBox, bool)
	tileCount() int
	encodeTo(w io.Writer) error
}

// Tree is a sparse voxel tree of one element kind. Obtain typed access
// through Values on the owning Grid.
type Tree struct {
	kind    Kind
	storage treeStorage
}

func newTreeOf[T Element](kind Kind, background T) *Tree {
	return &Tree{kind: kind, storage: newTreeData[T](background)}
}

// Kind returns the element kind stored in the tree.
func (t *Tree) Kind() Kind {
	return t.kind
}

// ActiveVoxelCount returns the number of active voxels.
func (t *Tree) ActiveVoxelCount() int64 {
	return t.storage.activeCount()
}

// ActiveBBox returns the inclusive bounding box of the active voxels,
// false when the tree has none.
func (t *Tree) ActiveBBox() (CoordBBox, bool) {
	return t.storage.activeBBox()
}

// TileCount returns the number of allocated tiles.
func (t *Tree) TileCount() int {
	return t.storage.tileCount()
}

// MemUsage estimates the resident bytes of the tree.
func (t *Tree) MemUsage() int64 {
	return int64(t.storage.tileCount()) * (TileVolume*t.kind.elemBytes() + tileOverheadBytes)
}
