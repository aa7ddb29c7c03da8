package voxel

import "testing"

func TestAccessorSetGet(t *testing.T) {
	g := NewGridOf[float32]("density", 0.1)
	acc, err := Values[float32](g)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}

	if got := acc.Background(); got != float32(0.1) {
		t.Fatalf("background = %v, want 0.1", got)
	}
	if got := acc.Get(Coord{1, 2, 3}); got != float32(0.1) {
		t.Fatalf("inactive voxel = %v, want background 0.1", got)
	}

	acc.Set(Coord{1, 2, 3}, 0.75)
	if got := acc.Get(Coord{1, 2, 3}); got != float32(0.75) {
		t.Fatalf("active voxel = %v, want 0.75", got)
	}
	if !acc.Active(Coord{1, 2, 3}) {
		t.Fatal("voxel should be active after Set")
	}
	if acc.Active(Coord{1, 2, 4}) {
		t.Fatal("neighbor should stay inactive")
	}
}

// Setting the same voxel twice overwrites without double-counting.
func TestActiveVoxelCount(t *testing.T) {
	g := NewGridOf[int32]("flags", 0)
	acc, _ := Values[int32](g)

	acc.Set(Coord{0, 0, 0}, 1)
	acc.Set(Coord{0, 0, 0}, 2)
	acc.Set(Coord{100, -20, 3}, 3)

	if got := g.ActiveVoxelCount(); got != 2 {
		t.Fatalf("ActiveVoxelCount = %d, want 2", got)
	}
	if got := acc.Get(Coord{0, 0, 0}); got != 2 {
		t.Fatalf("overwritten voxel = %d, want 2", got)
	}
}

func TestNegativeCoordinates(t *testing.T) {
	g := NewGridOf[float64]("temperature", -273.15)
	acc, _ := Values[float64](g)

	coords := []Coord{{-1, -1, -1}, {-8, 0, 7}, {-9, -16, -17}}
	for i, c := range coords {
		acc.Set(c, float64(i))
	}
	for i, c := range coords {
		if got := acc.Get(c); got != float64(i) {
			t.Errorf("Get(%v) = %v, want %v", c, got, float64(i))
		}
	}
	if got := acc.Get(Coord{-2, -1, -1}); got != -273.15 {
		t.Errorf("inactive negative voxel = %v, want background", got)
	}
}

func TestActiveBBoxSpansTiles(t *testing.T) {
	g := NewGridOf[bool]("interior", false)
	acc, _ := Values[bool](g)

	if _, ok := g.ActiveBBox(); ok {
		t.Fatal("empty grid should have no active bbox")
	}

	acc.Set(Coord{-3, 2, 10}, true)
	acc.Set(Coord{14, -7, 0}, true)

	box, ok := g.ActiveBBox()
	if !ok {
		t.Fatal("expected an active bbox")
	}
	want := CoordBBox{Min: Coord{-3, -7, 0}, Max: Coord{14, 2, 10}}
	if box != want {
		t.Fatalf("active bbox = %+v, want %+v", box, want)
	}
	if got := g.Tree().TileCount(); got != 2 {
		t.Fatalf("TileCount = %d, want 2", got)
	}
}

func TestValuesKindMismatch(t *testing.T) {
	g := NewGridOf[float32]("density", 0)
	if _, err := Values[int32](g); err == nil {
		t.Fatal("expected kind mismatch error")
	}

	meta := NewMetaGrid("density", KindFloat, IdentityTransform())
	if _, err := Values[float32](meta); err == nil {
		t.Fatal("expected error for metadata-only grid")
	}
}

func TestClearTree(t *testing.T) {
	g := NewGrid("velocity", KindVectorFloat)
	acc, _ := Values[[3]float32](g)
	acc.Set(Coord{1, 1, 1}, [3]float32{1, 2, 3})

	if g.MemUsage() == 0 {
		t.Fatal("grid with data should report memory usage")
	}

	g.ClearTree()
	if g.Tree() != nil {
		t.Fatal("tree should be nil after ClearTree")
	}
	if got := g.ActiveVoxelCount(); got != 0 {
		t.Fatalf("ActiveVoxelCount after clear = %d, want 0", got)
	}
	if got := g.MemUsage(); got != 0 {
		t.Fatalf("MemUsage after clear = %d, want 0", got)
	}
	// name, kind, and transform survive eviction
	if g.Name() != "velocity" || g.Kind() != KindVectorFloat {
		t.Fatalf("metadata lost: name=%q kind=%v", g.Name(), g.Kind())
	}
}

func TestNewGridUnknownKind(t *testing.T) {
	g := NewGrid("mystery", KindUnknown)
	if g.Tree() != nil {
		t.Fatal("unknown kind should produce a metadata-only grid")
	}
}
