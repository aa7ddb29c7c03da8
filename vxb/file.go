package vxb

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/voxel"
)

const defaultBusyTimeoutMS = 5000

// File is a read handle on one VXB container.
type File struct {
	path string
	db   *sql.DB
	meta map[string]string
}

// Open opens an existing container. It fails when the file is missing, is
// not a VXB container, or carries a schema version this library does not
// support. The sqlite driver would create a missing file on first use, so
// existence is checked up front.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeoutMS)); err != nil {
		db.Close()
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	if err := checkSchemaVersion(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	meta := make(map[string]string)
	rows, err := db.Query("SELECT key, value FROM vxb_meta")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read container metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			db.Close()
			return nil, fmt.Errorf("read container metadata: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("read container metadata: %w", err)
	}

	return &File{path: path, db: db, meta: meta}, nil
}

// Path returns the path the container was opened from.
func (f *File) Path() string {
	return f.path
}

// UUID returns the container's unique id, stamped when it was created.
func (f *File) UUID() string {
	return f.meta["uuid"]
}

// Creator returns the library version string that wrote the container.
func (f *File) Creator() string {
	return f.meta["creator"]
}

// CreatedUnixNanos returns the creation timestamp, 0 when absent.
func (f *File) CreatedUnixNanos() int64 {
	n, err := strconv.ParseInt(f.meta["created_unix_nanos"], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Grids enumerates the container's grids in file order as metadata-only
// grids. No tree payload is touched; a corrupt payload does not affect
// enumeration. On a mid-scan failure the grids read so far are returned
// along with the error.
func (f *File) Grids() ([]*voxel.Grid, error) {
	rows, err := f.db.Query("SELECT name, kind, transform_json FROM grids ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("enumerate grids: %w", err)
	}
	defer rows.Close()

	var grids []*voxel.Grid
	for rows.Next() {
		var name, kindName, transformJSON string
		if err := rows.Scan(&name, &kindName, &transformJSON); err != nil {
			return grids, fmt.Errorf("enumerate grids: %w", err)
		}
		var tr voxel.Transform
		if err := json.Unmarshal([]byte(transformJSON), &tr); err != nil {
			return grids, fmt.Errorf("grid %q has a bad transform: %w", name, err)
		}
		grids = append(grids, voxel.NewMetaGrid(name, voxel.ParseKind(kindName), tr))
	}
	if err := rows.Err(); err != nil {
		return grids, fmt.Errorf("enumerate grids: %w", err)
	}
	return grids, nil
}

// ReadTree reads, decompresses, and decodes one grid's tree.
func (f *File) ReadTree(name string) (*voxel.Tree, error) {
	var gridID int64
	var kindName string
	err := f.db.QueryRow("SELECT id, kind FROM grids WHERE name = ?", name).Scan(&gridID, &kindName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grid %q not in container", name)
	}
	if err != nil {
		return nil, fmt.Errorf("look up grid %q: %w", name, err)
	}

	var codec string
	var payload []byte
	var rawBytes int64
	err = f.db.QueryRow("SELECT codec, payload, raw_bytes FROM grid_trees WHERE grid_id = ?", gridID).
		Scan(&codec, &payload, &rawBytes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grid %q has no tree payload", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read tree of grid %q: %w", name, err)
	}

	raw, err := decompressPayload(codec, payload, rawBytes)
	if err != nil {
		return nil, fmt.Errorf("decompress tree of grid %q: %w", name, err)
	}
	tree, err := voxel.DecodeTree(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("grid %q: %w", name, err)
	}
	if want := voxel.ParseKind(kindName); want != voxel.KindUnknown && tree.Kind() != want {
		return nil, fmt.Errorf("grid %q payload kind %s disagrees with metadata kind %s",
			name, tree.Kind(), want)
	}

	monitoring.Logf("[VXB] read tree %q from %s (%s, %d -> %d bytes)",
		name, f.path, codec, len(payload), rawBytes)
	return tree, nil
}

// Close releases the database handle.
func (f *File) Close() error {
	return f.db.Close()
}
