// Package monitor renders diagnostic visualisations of cached volumes.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/volume"
	"github.com/voxelbase/voxcache/voxel"
)

// SliceHeatmap adapts one Z slice of a grid's dense voxels to the plotter
// grid interface. Columns run along X and rows along Y, in index space.
type SliceHeatmap struct {
	min    voxel.Coord
	nx, ny int
	values []float32
}

// NewSliceHeatmap extracts the z slice of the grid's dense bounding box.
// The grid must be loaded and single-channel.
func NewSliceHeatmap(h *volume.Handle, z int32) (*SliceHeatmap, error) {
	if ch := h.Kind().Channels(); ch != 1 {
		return nil, fmt.Errorf("grid %q has %d channels, slice heatmaps need one", h.Name(), ch)
	}
	lo, hi, ok := volume.DenseBounds(h)
	if !ok {
		return nil, fmt.Errorf("grid %q has no active voxels", h.Name())
	}
	if z < lo.Z || z >= hi.Z {
		return nil, fmt.Errorf("slice z=%d outside %d..%d", z, lo.Z, hi.Z-1)
	}

	smin := voxel.Coord{X: lo.X, Y: lo.Y, Z: z}
	smax := voxel.Coord{X: hi.X, Y: hi.Y, Z: z + 1}
	nx := int(hi.X - lo.X)
	ny := int(hi.Y - lo.Y)
	values := make([]float32, nx*ny)
	if err := volume.DenseVoxels(h, smin, smax, values); err != nil {
		return nil, err
	}
	return &SliceHeatmap{min: smin, nx: nx, ny: ny, values: values}, nil
}

// Dims returns the number of columns and rows.
func (s *SliceHeatmap) Dims() (c, r int) {
	return s.nx, s.ny
}

// Z returns the voxel value at column c, row r.
func (s *SliceHeatmap) Z(c, r int) float64 {
	return float64(s.values[r*s.nx+c])
}

// X returns the index-space x coordinate of column c.
func (s *SliceHeatmap) X(c int) float64 {
	return float64(s.min.X) + float64(c)
}

// Y returns the index-space y coordinate of row r.
func (s *SliceHeatmap) Y(r int) float64 {
	return float64(s.min.Y) + float64(r)
}

// RenderSliceHeatmap builds a heatmap plot of the grid's z slice.
func RenderSliceHeatmap(h *volume.Handle, z int32) (*plot.Plot, error) {
	s, err := NewSliceHeatmap(h, z)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s @ z=%d", h.Name(), z)
	p.X.Label.Text = "X (index)"
	p.Y.Label.Text = "Y (index)"
	p.Add(plotter.NewHeatMap(s, palette.Heat(12, 1)))
	return p, nil
}

// SaveSliceHeatmap renders the slice as a square image of the given edge
// length in inches. The format follows the file extension; non-positive
// lengths fall back to 8 inches.
func SaveSliceHeatmap(h *volume.Handle, z int32, path string, inches float64) error {
	p, err := RenderSliceHeatmap(h, z)
	if err != nil {
		return err
	}
	if inches <= 0 {
		inches = 8
	}
	edge := vg.Length(inches) * vg.Inch
	if err := p.Save(edge, edge, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	monitoring.Logf("[Monitor] wrote heatmap %s", path)
	return nil
}
