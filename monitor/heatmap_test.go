package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voxelbase/voxcache/volume"
	"github.com/voxelbase/voxcache/voxel"
)

func denseCubeHandle(t *testing.T) *volume.Handle {
	t.Helper()
	g := voxel.NewGridOf[float32]("density", 0)
	acc, err := voxel.Values[float32](g)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	for z := int32(2); z <= 5; z++ {
		for y := int32(2); y <= 5; y++ {
			for x := int32(2); x <= 5; x++ {
				acc.Set(voxel.Coord{X: x, Y: y, Z: z}, 0.5)
			}
		}
	}
	return volume.NewProceduralGrid(g)
}

func TestNewSliceHeatmap(t *testing.T) {
	h := denseCubeHandle(t)

	s, err := NewSliceHeatmap(h, 3)
	if err != nil {
		t.Fatalf("NewSliceHeatmap: %v", err)
	}

	c, r := s.Dims()
	if c != 4 || r != 4 {
		t.Errorf("Dims() = %d, %d, want 4, 4", c, r)
	}
	if got := s.Z(0, 0); got != 0.5 {
		t.Errorf("Z(0, 0) = %v, want 0.5", got)
	}
	if got := s.X(0); got != 2 {
		t.Errorf("X(0) = %v, want 2", got)
	}
	if got := s.Y(3); got != 5 {
		t.Errorf("Y(3) = %v, want 5", got)
	}
}

func TestNewSliceHeatmapErrors(t *testing.T) {
	// Slice outside the dense bounds.
	if _, err := NewSliceHeatmap(denseCubeHandle(t), 9); err == nil {
		t.Error("expected error for out-of-range slice")
	}

	// No active voxels.
	empty := volume.NewProceduralGrid(voxel.NewGridOf[float32]("empty", 0))
	if _, err := NewSliceHeatmap(empty, 0); err == nil {
		t.Error("expected error for empty grid")
	}

	// Vector grids have three channels.
	vel := voxel.NewGridOf[[3]float32]("velocity", [3]float32{})
	acc, err := voxel.Values[[3]float32](vel)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	acc.Set(voxel.Coord{}, [3]float32{1, 0, 0})
	if _, err := NewSliceHeatmap(volume.NewProceduralGrid(vel), 0); err == nil {
		t.Error("expected error for multi-channel grid")
	}
}

func TestSaveSliceHeatmap(t *testing.T) {
	h := denseCubeHandle(t)
	path := filepath.Join(t.TempDir(), "density_z3.png")

	if err := SaveSliceHeatmap(h, 3, path, 4); err != nil {
		t.Fatalf("SaveSliceHeatmap: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("heatmap file is empty")
	}
}
