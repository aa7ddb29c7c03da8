package voxel

import "fmt"

// CopyToDense fills dst with the grid's voxels over the half-open index box
// [min, max), converted to float32. Layout is X fastest, then Y, then Z:
// index = (x-min.X) + nx*((y-min.Y) + ny*(z-min.Z)), with Channels()
// interleaved values per voxel. Kinds without a float representation
// (string, unknown) zero-fill whatever buffer the caller passed. For all
// other kinds dst must hold exactly Volume*Channels values.
func CopyToDense(g *Grid, min, max Coord, dst []float32) error {
	ch := g.kind.Channels()
	if ch == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	if g.tree == nil {
		return fmt.Errorf("grid %q has no tree loaded", g.name)
	}
	nx := int64(max.X) - int64(min.X)
	ny := int64(max.Y) - int64(min.Y)
	nz := int64(max.Z) - int64(min.Z)
	if nx < 0 || ny < 0 || nz < 0 {
		return fmt.Errorf("dense box min %v exceeds max %v", min, max)
	}
	if want := nx * ny * nz * int64(ch); int64(len(dst)) != want {
		return fmt.Errorf("dense buffer has %d values, box %v..%v with %d channels needs %d",
			len(dst), min, max, ch, want)
	}

	switch d := g.tree.storage.(type) {
	case *treeData[float32]:
		denseCopy(d, min, max, dst, ch, func(v float32, out []float32) {
			out[0] = v
		})
	case *treeData[float64]:
		denseCopy(d, min, max, dst, ch, func(v float64, out []float32) {
			out[0] = float32(v)
		})
	case *treeData[bool]:
		denseCopy(d, min, max, dst, ch, func(v bool, out []float32) {
			if v {
				out[0] = 1
			} else {
				out[0] = 0
			}
		})
	case *treeData[int32]:
		denseCopy(d, min, max, dst, ch, func(v int32, out []float32) {
			out[0] = float32(v)
		})
	case *treeData[int64]:
		denseCopy(d, min, max, dst, ch, func(v int64, out []float32) {
			out[0] = float32(v)
		})
	case *treeData[[3]float32]:
		denseCopy(d, min, max, dst, ch, func(v [3]float32, out []float32) {
			out[0], out[1], out[2] = v[0], v[1], v[2]
		})
	case *treeData[[3]float64]:
		denseCopy(d, min, max, dst, ch, func(v [3]float64, out []float32) {
			out[0], out[1], out[2] = float32(v[0]), float32(v[1]), float32(v[2])
		})
	case *treeData[[3]int32]:
		denseCopy(d, min, max, dst, ch, func(v [3]int32, out []float32) {
			out[0], out[1], out[2] = float32(v[0]), float32(v[1]), float32(v[2])
		})
	default:
		return fmt.Errorf("grid %q kind %s has no dense form", g.name, g.kind)
	}
	return nil
}

// denseCopy writes the background everywhere, then overwrites the active
// voxels of each tile intersecting the box.
func denseCopy[T Element](d *treeData[T], lo, hi Coord, dst []float32, ch int, conv func(T, []float32)) {
	nx := int(hi.X - lo.X)
	ny := int(hi.Y - lo.Y)
	nz := int(hi.Z - lo.Z)
	if nx == 0 || ny == 0 || nz == 0 {
		return
	}

	var bg [3]float32
	conv(d.background, bg[:ch])
	for i := 0; i < len(dst); i += ch {
		for c := 0; c < ch; c++ {
			dst[i+c] = bg[c]
		}
	}

	d.tiles.Ascend(func(t *tile[T]) bool {
		x0 := max(t.origin.X, lo.X)
		y0 := max(t.origin.Y, lo.Y)
		z0 := max(t.origin.Z, lo.Z)
		x1 := min(t.origin.X+TileDim, hi.X)
		y1 := min(t.origin.Y+TileDim, hi.Y)
		z1 := min(t.origin.Z+TileDim, hi.Z)
		if x0 >= x1 || y0 >= y1 || z0 >= z1 {
			return true
		}
		for z := z0; z < z1; z++ {
			for y := y0; y < y1; y++ {
				row := (int(z-lo.Z)*ny + int(y-lo.Y)) * nx
				for x := x0; x < x1; x++ {
					li := localIndex(Coord{x, y, z}, t.origin)
					if !t.mask.get(li) {
						continue
					}
					off := (row + int(x-lo.X)) * ch
					conv(t.values[li], dst[off:off+ch])
				}
			}
		}
		return true
	})
}
