// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/voxelbase/voxcache/voxel"
	"github.com/voxelbase/voxcache/vxb"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// DensityGrid builds a float grid named "density" with a solid cube of
// active voxels from (2,2,2) through (5,5,5), all holding value.
func DensityGrid(t *testing.T, value float32) *voxel.Grid {
	t.Helper()
	g := voxel.NewGridOf[float32]("density", 0)
	acc, err := voxel.Values[float32](g)
	AssertNoError(t, err)
	for z := int32(2); z <= 5; z++ {
		for y := int32(2); y <= 5; y++ {
			for x := int32(2); x <= 5; x++ {
				acc.Set(voxel.Coord{X: x, Y: y, Z: z}, value)
			}
		}
	}
	return g
}

// VelocityGrid builds a vector grid named "velocity" with voxel size 0.25
// and a single active voxel at (-1, 0, 3).
func VelocityGrid(t *testing.T) *voxel.Grid {
	t.Helper()
	g := voxel.NewGridOf[[3]float32]("velocity", [3]float32{})
	g.SetTransform(voxel.LinearTransform(0.25))
	acc, err := voxel.Values[[3]float32](g)
	AssertNoError(t, err)
	acc.Set(voxel.Coord{X: -1, Y: 0, Z: 3}, [3]float32{1, 2, 3})
	return g
}

// WriteContainer writes the given grids to a new container file named name
// under dir and returns its path.
func WriteContainer(t *testing.T, dir, name string, grids ...*voxel.Grid) string {
	t.Helper()
	path := filepath.Join(dir, name)

	w, err := vxb.Create(path, vxb.CreateOptions{})
	AssertNoError(t, err)
	for _, g := range grids {
		AssertNoError(t, w.WriteGrid(g))
	}
	AssertNoError(t, w.Close())
	return path
}
