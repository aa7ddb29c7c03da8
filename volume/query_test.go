package volume

import (
	"testing"

	"github.com/voxelbase/voxcache/voxel"
)

func proceduralCube(t *testing.T, voxelSize float64) *Handle {
	t.Helper()
	g := voxel.NewGridOf[float32]("density", 0)
	if voxelSize != 1 {
		g.SetTransform(voxel.LinearTransform(voxelSize))
	}
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
	return NewProceduralGrid(g)
}

func TestTransformMatrix(t *testing.T) {
	h := proceduralCube(t, 2)
	m := TransformMatrix(h)
	if m[0] != 2 || m[5] != 2 || m[10] != 2 || m[15] != 1 {
		t.Errorf("unexpected linear matrix: %v", m)
	}
}

// Frustum transforms have no affine matrix; queries fall back to the
// identity instead of failing.
func TestTransformMatrixNonAffineFallback(t *testing.T) {
	g := voxel.NewGridOf[float32]("fog", 0)
	box := voxel.CoordBBox{Min: voxel.Coord{}, Max: voxel.Coord{X: 10, Y: 10, Z: 10}}
	g.SetTransform(voxel.FrustumTransform(box, 0.5, 20))
	h := NewProceduralGrid(g)

	if got := TransformMatrix(h); got != voxel.IdentityMatrix() {
		t.Errorf("TransformMatrix() = %v, want identity", got)
	}
	if got := DenseTransformMatrix(h, voxel.Coord{}, voxel.Coord{X: 4, Y: 4, Z: 4}); got[0] != 4 {
		t.Errorf("DenseTransformMatrix()[0] = %v, want 4", got[0])
	}
}

func TestGridBounds(t *testing.T) {
	h := proceduralCube(t, 2)
	min, max, ok := GridBounds(h)
	if !ok {
		t.Fatal("GridBounds() not ok for a grid with active voxels")
	}
	for a := 0; a < 3; a++ {
		if min[a] != 4 || max[a] != 10 {
			t.Fatalf("GridBounds() = %v..%v, want 4..10 per axis", min, max)
		}
	}

	empty := NewProceduralGrid(voxel.NewGridOf[float32]("empty", 0))
	if _, _, ok := GridBounds(empty); ok {
		t.Error("GridBounds() ok for a grid with no active voxels")
	}
}

func TestDenseBounds(t *testing.T) {
	h := proceduralCube(t, 1)
	min, max, ok := DenseBounds(h)
	if !ok {
		t.Fatal("DenseBounds() not ok for a grid with active voxels")
	}
	want := voxel.Coord{X: 2, Y: 2, Z: 2}
	if min != want {
		t.Errorf("min = %v, want %v", min, want)
	}
	// Max is one past the last active voxel.
	want = voxel.Coord{X: 6, Y: 6, Z: 6}
	if max != want {
		t.Errorf("max = %v, want %v", max, want)
	}

	empty := NewProceduralGrid(voxel.NewGridOf[float32]("empty", 0))
	if _, _, ok := DenseBounds(empty); ok {
		t.Error("DenseBounds() ok for a grid with no active voxels")
	}
}

func TestDenseVoxels(t *testing.T) {
	h := proceduralCube(t, 1)
	min, max, ok := DenseBounds(h)
	if !ok {
		t.Fatal("DenseBounds() not ok")
	}

	dst := make([]float32, 64)
	if err := DenseVoxels(h, min, max, dst); err != nil {
		t.Fatalf("DenseVoxels: %v", err)
	}
	for i, v := range dst {
		if v != 0.5 {
			t.Fatalf("dst[%d] = %v, want 0.5", i, v)
		}
	}

	// A wrong-sized buffer is rejected.
	if err := DenseVoxels(h, min, max, make([]float32, 63)); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestDenseTransformMatrix(t *testing.T) {
	h := proceduralCube(t, 2)
	min := voxel.Coord{X: 2, Y: 2, Z: 2}
	max := voxel.Coord{X: 6, Y: 6, Z: 6}
	m := DenseTransformMatrix(h, min, max)

	// The unit cube corners land on the dense box corners in world space.
	tr := voxel.MatrixTransform(m)
	lo := tr.IndexToWorld([3]float64{0, 0, 0})
	hi := tr.IndexToWorld([3]float64{1, 1, 1})
	for a := 0; a < 3; a++ {
		if lo[a] != 4 {
			t.Errorf("lo[%d] = %v, want 4", a, lo[a])
		}
		if hi[a] != 12 {
			t.Errorf("hi[%d] = %v, want 12", a, hi[a])
		}
	}
}
