package voxel

import "fmt"

// Coord is an integer voxel coordinate on the grid's index lattice.
type Coord struct {
	X, Y, Z int32
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Offset returns the coordinate translated by (dx, dy, dz).
func (c Coord) Offset(dx, dy, dz int32) Coord {
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

// tileOrigin rounds the coordinate down to the origin of its 8^3 tile.
func (c Coord) tileOrigin() Coord {
	mask := int32(TileDim - 1)
	return Coord{c.X &^ mask, c.Y &^ mask, c.Z &^ mask}
}

// CoordBBox is an axis-aligned box of voxel coordinates. Both Min and Max
// are inclusive, matching the index-space bounds stored in container files.
// An empty box has Min > Max on at least one axis.
type CoordBBox struct {
	Min, Max Coord
}

// EmptyBBox returns the canonical empty box. Extending it with any
// coordinate yields a box containing exactly that coordinate.
func EmptyBBox() CoordBBox {
	const lo, hi = int32(-1 << 31), int32(1<<31-1)
	return CoordBBox{Min: Coord{hi, hi, hi}, Max: Coord{lo, lo, lo}}
}

// Empty reports whether the box contains no coordinates.
func (b CoordBBox) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include c.
func (b *CoordBBox) Extend(c Coord) {
	if c.X < b.Min.X {
		b.Min.X = c.X
	}
	if c.Y < b.Min.Y {
		b.Min.Y = c.Y
	}
	if c.Z < b.Min.Z {
		b.Min.Z = c.Z
	}
	if c.X > b.Max.X {
		b.Max.X = c.X
	}
	if c.Y > b.Max.Y {
		b.Max.Y = c.Y
	}
	if c.Z > b.Max.Z {
		b.Max.Z = c.Z
	}
}

// Union grows the box to cover other. Unioning with an empty box is a no-op.
func (b *CoordBBox) Union(other CoordBBox) {
	if other.Empty() {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Contains reports whether c lies inside the box.
func (b CoordBBox) Contains(c Coord) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Dim returns the box extents in voxels per axis. Empty boxes have zero
// extents on every axis.
func (b CoordBBox) Dim() (dx, dy, dz int64) {
	if b.Empty() {
		return 0, 0, 0
	}
	dx = int64(b.Max.X) - int64(b.Min.X) + 1
	dy = int64(b.Max.Y) - int64(b.Min.Y) + 1
	dz = int64(b.Max.Z) - int64(b.Min.Z) + 1
	return dx, dy, dz
}

// Volume returns the number of coordinates inside the box.
func (b CoordBBox) Volume() int64 {
	dx, dy, dz := b.Dim()
	return dx * dy * dz
}
