package voxel

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Wire form of a tree: one kind byte, then a gob stream of wireTree.
// Compression is layered on top by the container, not here.

// wireTile carries one tile: origin, active mask, and the values of active
// voxels only, in ascending local-index order.
type wireTile[T Element] struct {
	Origin Coord
	Mask   [TileVolume / 64]uint64
	Values []T
}

type wireTree[T Element] struct {
	Background T
	Tiles      []wireTile[T]
}

// EncodeTo writes the tree in wire form. Tiles are written in (Z, Y, X)
// origin order, so equal trees produce identical bytes.
func (t *Tree) EncodeTo(w io.Writer) error {
	if _, err := w.Write([]byte{byte(t.kind)}); err != nil {
		return fmt.Errorf("write tree kind: %w", err)
	}
	return t.storage.encodeTo(w)
}

func (d *treeData[T]) encodeTo(w io.Writer) error {
	wt := wireTree[T]{
		Background: d.background,
		Tiles:      make([]wireTile[T], 0, d.tiles.Len()),
	}
	d.tiles.Ascend(func(t *tile[T]) bool {
		out := wireTile[T]{Origin: t.origin, Mask: [TileVolume / 64]uint64(t.mask)}
		out.Values = make([]T, 0, t.mask.count())
		for i := 0; i < TileVolume; i++ {
			if t.mask.get(i) {
				out.Values = append(out.Values, t.values[i])
			}
		}
		wt.Tiles = append(wt.Tiles, out)
		return true
	})
	return gob.NewEncoder(w).Encode(wt)
}

// DecodeTree reads a tree in wire form, validating the kind byte, tile
// alignment, and the value-count-to-mask agreement of every tile.
func DecodeTree(r io.Reader) (*Tree, error) {
	var kb [1]byte
	if _, err := io.ReadFull(r, kb[:]); err != nil {
		return nil, fmt.Errorf("read tree kind: %w", err)
	}
	kind := Kind(kb[0])
	switch kind {
	case KindFloat:
		return decodeTreeData[float32](kind, r)
	case KindDouble:
		return decodeTreeData[float64](kind, r)
	case KindBoolean, KindMask:
		return decodeTreeData[bool](kind, r)
	case KindInt:
		return decodeTreeData[int32](kind, r)
	case KindInt64:
		return decodeTreeData[int64](kind, r)
	case KindVectorFloat:
		return decodeTreeData[[3]float32](kind, r)
	case KindVectorDouble:
		return decodeTreeData[[3]float64](kind, r)
	case KindVectorInt:
		return decodeTreeData[[3]int32](kind, r)
	case KindString:
		return decodeTreeData[string](kind, r)
	}
	return nil, fmt.Errorf("unsupported tree kind byte 0x%02x", kb[0])
}

func decodeTreeData[T Element](kind Kind, r io.Reader) (*Tree, error) {
	var wt wireTree[T]
	if err := gob.NewDecoder(r).Decode(&wt); err != nil {
		return nil, fmt.Errorf("decode %s tree: %w", kind, err)
	}
	d := newTreeData[T](wt.Background)
	for _, in := range wt.Tiles {
		if in.Origin.tileOrigin() != in.Origin {
			return nil, fmt.Errorf("decode %s tree: tile origin %v not aligned", kind, in.Origin)
		}
		mask := tileMask(in.Mask)
		active := mask.count()
		if len(in.Values) != active {
			return nil, fmt.Errorf("decode %s tree: tile %v has %d values for %d active bits",
				kind, in.Origin, len(in.Values), active)
		}
		t := &tile[T]{origin: in.Origin, mask: mask}
		vi := 0
		for i := 0; i < TileVolume; i++ {
			if mask.get(i) {
				t.values[i] = in.Values[vi]
				vi++
			}
		}
		if _, replaced := d.tiles.ReplaceOrInsert(t); replaced {
			return nil, fmt.Errorf("decode %s tree: duplicate tile at %v", kind, in.Origin)
		}
		d.active += int64(active)
	}
	return &Tree{kind: kind, storage: d}, nil
}
