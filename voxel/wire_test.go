package voxel

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTree(t *testing.T, g *Grid) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, g.Tree().EncodeTo(&buf))
	return buf.Bytes()
}

func TestTreeWireRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("float grid", func(t *testing.T) {
		t.Parallel()
		g := NewGridOf[float32]("density", 0.5)
		acc, _ := Values[float32](g)
		acc.Set(Coord{0, 0, 0}, 1)
		acc.Set(Coord{-5, 3, 100}, 2.25)

		decoded, err := DecodeTree(bytes.NewReader(encodeTree(t, g)))
		require.NoError(t, err)
		assert.Equal(t, KindFloat, decoded.Kind())
		assert.Equal(t, int64(2), decoded.ActiveVoxelCount())

		restored := NewMetaGrid("density", KindUnknown, IdentityTransform())
		restored.SetTree(decoded)
		racc, err := Values[float32](restored)
		require.NoError(t, err)
		assert.Equal(t, float32(0.5), racc.Background())
		assert.Equal(t, float32(1), racc.Get(Coord{0, 0, 0}))
		assert.Equal(t, float32(2.25), racc.Get(Coord{-5, 3, 100}))
		assert.False(t, racc.Active(Coord{1, 0, 0}))
	})

	t.Run("vector grid", func(t *testing.T) {
		t.Parallel()
		g := NewGridOf[[3]float32]("velocity", [3]float32{0, -9.8, 0})
		acc, _ := Values[[3]float32](g)
		acc.Set(Coord{7, 7, 7}, [3]float32{1, 2, 3})

		decoded, err := DecodeTree(bytes.NewReader(encodeTree(t, g)))
		require.NoError(t, err)

		restored := NewMetaGrid("velocity", KindUnknown, IdentityTransform())
		restored.SetTree(decoded)
		racc, err := Values[[3]float32](restored)
		require.NoError(t, err)
		assert.Equal(t, [3]float32{0, -9.8, 0}, racc.Background())
		assert.Equal(t, [3]float32{1, 2, 3}, racc.Get(Coord{7, 7, 7}))
	})

	t.Run("mask grid keeps its kind", func(t *testing.T) {
		t.Parallel()
		g := NewGrid("interior", KindMask)
		acc, _ := Values[bool](g)
		acc.Set(Coord{1, 2, 3}, true)

		decoded, err := DecodeTree(bytes.NewReader(encodeTree(t, g)))
		require.NoError(t, err)
		assert.Equal(t, KindMask, decoded.Kind())
		assert.Equal(t, int64(1), decoded.ActiveVoxelCount())
	})

	t.Run("string grid", func(t *testing.T) {
		t.Parallel()
		g := NewGridOf[string]("labels", "")
		acc, _ := Values[string](g)
		acc.Set(Coord{0, 0, 0}, "fuel")

		decoded, err := DecodeTree(bytes.NewReader(encodeTree(t, g)))
		require.NoError(t, err)

		restored := NewMetaGrid("labels", KindUnknown, IdentityTransform())
		restored.SetTree(decoded)
		racc, err := Values[string](restored)
		require.NoError(t, err)
		assert.Equal(t, "fuel", racc.Get(Coord{0, 0, 0}))
	})

	t.Run("empty tree", func(t *testing.T) {
		t.Parallel()
		g := NewGridOf[int64]("counts", 42)

		decoded, err := DecodeTree(bytes.NewReader(encodeTree(t, g)))
		require.NoError(t, err)
		assert.Equal(t, int64(0), decoded.ActiveVoxelCount())

		restored := NewMetaGrid("counts", KindUnknown, IdentityTransform())
		restored.SetTree(decoded)
		racc, err := Values[int64](restored)
		require.NoError(t, err)
		assert.Equal(t, int64(42), racc.Background())
	})
}

// Equal trees must serialize to identical bytes: tiles are emitted in
// btree order regardless of insertion order.
func TestTreeWireDeterministic(t *testing.T) {
	t.Parallel()

	build := func(coords []Coord) *Grid {
		g := NewGridOf[float32]("density", 0)
		acc, _ := Values[float32](g)
		for i, c := range coords {
			acc.Set(c, float32(i%3))
		}
		return g
	}

	coords := []Coord{{30, 0, 0}, {-8, 4, 4}, {0, 0, 0}, {15, 15, 15}}
	a := encodeTree(t, build(coords))

	reversed := make([]Coord, len(coords))
	for i, c := range coords {
		reversed[len(coords)-1-i] = c
	}
	// values differ per insertion index, so rebuild with matching values
	g := NewGridOf[float32]("density", 0)
	acc, _ := Values[float32](g)
	for i, c := range reversed {
		acc.Set(c, float32((len(coords)-1-i)%3))
	}
	b := encodeTree(t, g)

	assert.Equal(t, a, b)
}

func TestDecodeTreeInvalid(t *testing.T) {
	t.Parallel()

	gobTree := func(wt wireTree[float32]) []byte {
		var buf bytes.Buffer
		buf.WriteByte(byte(KindFloat))
		if err := gob.NewEncoder(&buf).Encode(wt); err != nil {
			t.Fatalf("encode fixture: %v", err)
		}
		return buf.Bytes()
	}

	valid := encodeTree(t, NewGridOf[float32]("density", 0))

	testCases := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{
			name:    "empty input",
			data:    nil,
			wantErr: "read tree kind",
		},
		{
			name:    "unknown kind byte",
			data:    []byte{0x00, 0x01, 0x02},
			wantErr: "unsupported tree kind",
		},
		{
			name:    "truncated stream",
			data:    valid[:len(valid)/2],
			wantErr: "decode float tree",
		},
		{
			name: "value count disagrees with mask",
			data: gobTree(wireTree[float32]{
				Tiles: []wireTile[float32]{{
					Origin: Coord{0, 0, 0},
					Mask:   [TileVolume / 64]uint64{3},
					Values: []float32{1},
				}},
			}),
			wantErr: "active bits",
		},
		{
			name: "misaligned tile origin",
			data: gobTree(wireTree[float32]{
				Tiles: []wireTile[float32]{{Origin: Coord{1, 0, 0}}},
			}),
			wantErr: "not aligned",
		},
		{
			name: "duplicate tile",
			data: gobTree(wireTree[float32]{
				Tiles: []wireTile[float32]{
					{Origin: Coord{0, 0, 0}},
					{Origin: Coord{0, 0, 0}},
				},
			}),
			wantErr: "duplicate tile",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeTree(bytes.NewReader(tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
