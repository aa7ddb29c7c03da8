package voxel

import "fmt"

// Grid couples a named sparse tree with the transform that places it in
// world space. A grid with a nil Tree is metadata-only: its name, kind and
// transform are known but no voxel data is resident. The file cache moves
// grids between the two states by attaching and clearing trees.
type Grid struct {
	name      string
	kind      Kind
	transform Transform
	tree      *Tree
}

// NewGridOf creates a grid whose element type is inferred from the
// background value.
func NewGridOf[T Element](name string, background T) *Grid {
	kind := kindOf[T]()
	return &Grid{
		name:      name,
		kind:      kind,
		transform: IdentityTransform(),
		tree:      newTreeOf(kind, background),
	}
}

// NewGrid creates a grid of the given kind with a zero background.
// KindUnknown yields a metadata-only grid with no tree.
func NewGrid(name string, kind Kind) *Grid {
	g := &Grid{name: name, kind: kind, transform: IdentityTransform()}
	switch kind {
	case KindFloat:
		g.tree = newTreeOf(kind, float32(0))
	case KindDouble:
		g.tree = newTreeOf(kind, float64(0))
	case KindBoolean, KindMask:
		g.tree = newTreeOf(kind, false)
	case KindInt:
		g.tree = newTreeOf(kind, int32(0))
	case KindInt64:
		g.tree = newTreeOf(kind, int64(0))
	case KindVectorFloat:
		g.tree = newTreeOf(kind, [3]float32{})
	case KindVectorDouble:
		g.tree = newTreeOf(kind, [3]float64{})
	case KindVectorInt:
		g.tree = newTreeOf(kind, [3]int32{})
	case KindString:
		g.tree = newTreeOf(kind, "")
	}
	return g
}

// NewMetaGrid creates a metadata-only grid, the form container enumeration
// returns before any tree is read.
func NewMetaGrid(name string, kind Kind, transform Transform) *Grid {
	return &Grid{name: name, kind: kind, transform: transform}
}

func (g *Grid) Name() string {
	return g.name
}

func (g *Grid) Kind() Kind {
	return g.kind
}

func (g *Grid) Transform() Transform {
	return g.transform
}

func (g *Grid) SetTransform(t Transform) {
	g.transform = t
}

// Tree returns the attached tree, nil when the grid is metadata-only.
func (g *Grid) Tree() *Tree {
	return g.tree
}

// SetTree attaches a tree. A grid of unknown kind adopts the tree's kind.
func (g *Grid) SetTree(t *Tree) {
	g.tree = t
	if t != nil && g.kind == KindUnknown {
		g.kind = t.kind
	}
}

// ClearTree drops the tree, returning the grid to metadata-only form.
func (g *Grid) ClearTree() {
	g.tree = nil
}

// ActiveVoxelCount returns the number of active voxels, 0 without a tree.
func (g *Grid) ActiveVoxelCount() int64 {
	if g.tree == nil {
		return 0
	}
	return g.tree.ActiveVoxelCount()
}

// ActiveBBox returns the inclusive index-space bounds of the active voxels,
// false when the grid has no tree or no active voxels.
func (g *Grid) ActiveBBox() (CoordBBox, bool) {
	if g.tree == nil {
		return CoordBBox{}, false
	}
	return g.tree.ActiveBBox()
}

// MemUsage estimates the resident bytes of the grid's voxel data.
func (g *Grid) MemUsage() int64 {
	if g.tree == nil {
		return 0
	}
	return g.tree.MemUsage()
}

// Accessor provides typed voxel access to one grid's tree.
type Accessor[T Element] struct {
	data *treeData[T]
}

// Values returns a typed accessor for the grid. It fails when the grid has
// no tree or stores a different element type.
func Values[T Element](g *Grid) (Accessor[T], error) {
	if g.tree == nil {
		return Accessor[T]{}, fmt.Errorf("grid %q has no tree loaded", g.name)
	}
	data, ok := g.tree.storage.(*treeData[T])
	if !ok {
		return Accessor[T]{}, fmt.Errorf("grid %q stores %s values", g.name, g.tree.kind)
	}
	return Accessor[T]{data: data}, nil
}

// Get returns the value at c; inactive voxels read as the background.
func (a Accessor[T]) Get(c Coord) T {
	return a.data.Get(c)
}

// Set activates the voxel at c and stores v.
func (a Accessor[T]) Set(c Coord, v T) {
	a.data.Set(c, v)
}

// Active reports whether the voxel at c is active.
func (a Accessor[T]) Active(c Coord) bool {
	return a.data.Active(c)
}

// Background returns the value inactive voxels read as.
func (a Accessor[T]) Background() T {
	return a.data.background
}
