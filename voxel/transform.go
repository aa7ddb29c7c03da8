package voxel

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transform maps index-space coordinates to world space. Two forms exist:
// an affine 4x4 matrix and a nonlinear frustum map. Matrices are row-major
// with row-vector convention, p' = [x y z 1] * M, translation in the last
// row. The zero value is not valid; use one of the constructors.
type Transform struct {
	affine bool
	matrix [16]float64

	// frustum parameters, valid when affine is false
	box   CoordBBox
	taper float64
	depth float64
}

var identity = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// IdentityMatrix returns the 4x4 identity in the library's row-major layout.
func IdentityMatrix() [16]float64 {
	return identity
}

// IdentityTransform returns the affine transform that leaves coordinates
// unchanged. Grids are constructed with it until a transform is set.
func IdentityTransform() Transform {
	return Transform{affine: true, matrix: identity}
}

// LinearTransform returns a uniform scale by voxelSize on every axis.
func LinearTransform(voxelSize float64) Transform {
	m := identity
	m[0] = voxelSize
	m[5] = voxelSize
	m[10] = voxelSize
	return Transform{affine: true, matrix: m}
}

// MatrixTransform wraps an arbitrary affine matrix.
func MatrixTransform(m [16]float64) Transform {
	return Transform{affine: true, matrix: m}
}

// FrustumTransform builds a nonlinear map that tapers the index-space box
// toward its far plane: the XY cross-section is centered and scaled by
// 1 at the near plane through taper at the far plane, and Z spans [0, depth].
func FrustumTransform(box CoordBBox, taper, depth float64) Transform {
	return Transform{box: box, taper: taper, depth: depth}
}

// IsAffine reports whether the transform can be represented as a matrix.
func (t Transform) IsAffine() bool {
	return t.affine
}

// MatrixOrIdentity returns the affine matrix, or the identity when the
// transform is nonlinear and has no matrix form.
func (t Transform) MatrixOrIdentity() [16]float64 {
	if t.affine {
		return t.matrix
	}
	return identity
}

// IndexToWorld maps a continuous index-space position to world space.
func (t Transform) IndexToWorld(p [3]float64) [3]float64 {
	if !t.affine {
		return t.frustumToWorld(p)
	}
	m := t.matrix
	return [3]float64{
		p[0]*m[0] + p[1]*m[4] + p[2]*m[8] + m[12],
		p[0]*m[1] + p[1]*m[5] + p[2]*m[9] + m[13],
		p[0]*m[2] + p[1]*m[6] + p[2]*m[10] + m[14],
	}
}

func (t Transform) frustumToWorld(p [3]float64) [3]float64 {
	ex := float64(t.box.Max.X - t.box.Min.X)
	ey := float64(t.box.Max.Y - t.box.Min.Y)
	ez := float64(t.box.Max.Z - t.box.Min.Z)
	if ex == 0 {
		ex = 1
	}
	if ey == 0 {
		ey = 1
	}
	if ez == 0 {
		ez = 1
	}
	u := (p[0] - float64(t.box.Min.X)) / ex
	v := (p[1] - float64(t.box.Min.Y)) / ey
	w := (p[2] - float64(t.box.Min.Z)) / ez
	s := 1 + w*(t.taper-1)
	return [3]float64{(u - 0.5) * s, (v - 0.5) * s, w * t.depth}
}

// WorldBBox maps an index-space box to a world-space axis-aligned box by
// transforming its 8 corners. The inclusive max corner is used as-is.
// Returns false for an empty box.
func (t Transform) WorldBBox(b CoordBBox) (min, max [3]float64, ok bool) {
	if b.Empty() {
		return min, max, false
	}
	for i := 0; i < 8; i++ {
		c := [3]float64{float64(b.Min.X), float64(b.Min.Y), float64(b.Min.Z)}
		if i&1 != 0 {
			c[0] = float64(b.Max.X)
		}
		if i&2 != 0 {
			c[1] = float64(b.Max.Y)
		}
		if i&4 != 0 {
			c[2] = float64(b.Max.Z)
		}
		w := t.IndexToWorld(c)
		if i == 0 {
			min, max = w, w
			continue
		}
		for a := 0; a < 3; a++ {
			if w[a] < min[a] {
				min[a] = w[a]
			}
			if w[a] > max[a] {
				max[a] = w[a]
			}
		}
	}
	return min, max, true
}

// ComposeMatrix multiplies two transforms in application order: the result
// applies a first, then b (row-vector convention, product a*b).
func ComposeMatrix(a, b [16]float64) [16]float64 {
	var prod mat.Dense
	prod.Mul(mat.NewDense(4, 4, a[:]), mat.NewDense(4, 4, b[:]))
	var out [16]float64
	copy(out[:], prod.RawMatrix().Data)
	return out
}

// Equal reports whether two transforms are the same map. Used by tests and
// honored by go-cmp.
func (t Transform) Equal(other Transform) bool {
	if t.affine != other.affine {
		return false
	}
	if t.affine {
		return t.matrix == other.matrix
	}
	return t.box == other.box && t.taper == other.taper && t.depth == other.depth
}

type transformJSON struct {
	Type   string       `json:"type"`
	Matrix *[16]float64 `json:"matrix,omitempty"`
	Min    *[3]int32    `json:"min,omitempty"`
	Max    *[3]int32    `json:"max,omitempty"`
	Taper  *float64     `json:"taper,omitempty"`
	Depth  *float64     `json:"depth,omitempty"`
}

// MarshalJSON renders the transform for the container's transform column.
func (t Transform) MarshalJSON() ([]byte, error) {
	if t.affine {
		m := t.matrix
		return json.Marshal(transformJSON{Type: "affine", Matrix: &m})
	}
	min := [3]int32{t.box.Min.X, t.box.Min.Y, t.box.Min.Z}
	max := [3]int32{t.box.Max.X, t.box.Max.Y, t.box.Max.Z}
	taper, depth := t.taper, t.depth
	return json.Marshal(transformJSON{
		Type: "frustum", Min: &min, Max: &max, Taper: &taper, Depth: &depth,
	})
}

func (t *Transform) UnmarshalJSON(data []byte) error {
	var raw transformJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case "affine":
		if raw.Matrix == nil {
			return fmt.Errorf("affine transform missing matrix")
		}
		*t = MatrixTransform(*raw.Matrix)
		return nil
	case "frustum":
		if raw.Min == nil || raw.Max == nil || raw.Taper == nil || raw.Depth == nil {
			return fmt.Errorf("frustum transform missing parameters")
		}
		box := CoordBBox{
			Min: Coord{raw.Min[0], raw.Min[1], raw.Min[2]},
			Max: Coord{raw.Max[0], raw.Max[1], raw.Max[2]},
		}
		*t = FrustumTransform(box, *raw.Taper, *raw.Depth)
		return nil
	default:
		return fmt.Errorf("unknown transform type %q", raw.Type)
	}
}
