package volume

import (
	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/voxel"
)

// Renderers and exporters consume grids through the helpers below. All of
// them degrade gracefully on metadata-only grids: bounds report false and
// dense exports fail with an error, nothing panics.

// TransformMatrix returns the grid's index-to-world matrix. Nonlinear
// transforms have no matrix form and fall back to the identity with a
// diagnostic log, never an error.
func TransformMatrix(h *Handle) [16]float64 {
	tr := h.Grid().Transform()
	if !tr.IsAffine() {
		monitoring.Logf("[Volume] grid %q: nonlinear transform not supported, using identity", h.Name())
		return voxel.IdentityMatrix()
	}
	return tr.MatrixOrIdentity()
}

// GridBounds returns the world-space bounds of the grid's active voxels,
// false when the grid is not loaded or has none.
func GridBounds(h *Handle) (min, max [3]float64, ok bool) {
	g := h.Grid()
	box, ok := g.ActiveBBox()
	if !ok {
		return min, max, false
	}
	return g.Transform().WorldBBox(box)
}

// DenseBounds returns the half-open index-space box enclosing the grid's
// active voxels: max is one past the last active voxel on each axis.
// Grids with no active voxels return zero bounds and false.
func DenseBounds(h *Handle) (min, max voxel.Coord, ok bool) {
	box, ok := h.Grid().ActiveBBox()
	if !ok {
		return voxel.Coord{}, voxel.Coord{}, false
	}
	return box.Min, box.Max.Offset(1, 1, 1), true
}

// DenseVoxels fills dst with the grid's voxels over the half-open box
// [min, max) as float32 channels. See voxel.CopyToDense for the layout
// and per-kind conversions.
func DenseVoxels(h *Handle, min, max voxel.Coord, dst []float32) error {
	return voxel.CopyToDense(h.Grid(), min, max, dst)
}

// DenseTransformMatrix returns the matrix mapping the unit cube onto the
// world-space region of a dense box: unit texture coordinates scale and
// translate into index space, then the grid transform applies.
func DenseTransformMatrix(h *Handle, min, max voxel.Coord) [16]float64 {
	texToIndex := voxel.IdentityMatrix()
	texToIndex[0] = float64(max.X - min.X)
	texToIndex[5] = float64(max.Y - min.Y)
	texToIndex[10] = float64(max.Z - min.Z)
	texToIndex[12] = float64(min.X)
	texToIndex[13] = float64(min.Y)
	texToIndex[14] = float64(min.Z)
	return voxel.ComposeMatrix(texToIndex, TransformMatrix(h))
}
