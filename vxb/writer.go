package vxb

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/internal/version"
	"github.com/voxelbase/voxcache/voxel"
)

// CreateOptions configures a new container.
type CreateOptions struct {
	// Codec compresses tree payloads: "none", "gzip", or "lz4".
	Codec string
	// GzipLevel applies to the gzip codec only. The zero value selects
	// gzip.DefaultCompression.
	GzipLevel int
	// BusyTimeoutMS bounds lock waits when another process holds the file.
	BusyTimeoutMS int
}

// Normalize fills unset fields with defaults.
func (o CreateOptions) Normalize() CreateOptions {
	if o.Codec == "" {
		o.Codec = CodecLZ4
	}
	if o.GzipLevel == 0 {
		o.GzipLevel = gzip.DefaultCompression
	}
	if o.BusyTimeoutMS == 0 {
		o.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	return o
}

// Writer appends grids to a container created by Create.
type Writer struct {
	path string
	db   *sql.DB
	opts CreateOptions
}

// Create creates a new container at path, runs the schema migrations, and
// stamps the metadata table. It refuses to overwrite an existing file.
func Create(path string, opts CreateOptions) (*Writer, error) {
	opts = opts.Normalize()
	if !validCodec(opts.Codec) {
		return nil, fmt.Errorf("unknown codec %q", opts.Codec)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("container %s already exists", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("create container %s: %w", path, err)
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", opts.BusyTimeoutMS),
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("create container %s: %w", path, err)
		}
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("create container %s: %w", path, err)
	}

	stamp := [][2]string{
		{"uuid", uuid.New().String()},
		{"creator", version.Creator()},
		{"created_unix_nanos", fmt.Sprintf("%d", time.Now().UnixNano())},
	}
	for _, kv := range stamp {
		if _, err := db.Exec("INSERT INTO vxb_meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			db.Close()
			os.Remove(path)
			return nil, fmt.Errorf("stamp container %s: %w", path, err)
		}
	}

	monitoring.Logf("[VXB] created container %s (codec %s)", path, opts.Codec)
	return &Writer{path: path, db: db, opts: opts}, nil
}

// WriteGrid writes one grid: its metadata row plus the compressed tree
// payload, in a single transaction. Grids without a tree are rejected;
// write an empty tree to record a background-only grid.
func (w *Writer) WriteGrid(g *voxel.Grid) error {
	tree := g.Tree()
	if tree == nil {
		return fmt.Errorf("grid %q has no tree to write", g.Name())
	}

	transformJSON, err := json.Marshal(g.Transform())
	if err != nil {
		return fmt.Errorf("marshal transform of grid %q: %w", g.Name(), err)
	}
	var buf bytes.Buffer
	if err := tree.EncodeTo(&buf); err != nil {
		return fmt.Errorf("encode grid %q: %w", g.Name(), err)
	}
	raw := buf.Bytes()
	payload, err := compressPayload(w.opts.Codec, w.opts.GzipLevel, raw)
	if err != nil {
		return fmt.Errorf("compress grid %q: %w", g.Name(), err)
	}

	var minX, minY, minZ, maxX, maxY, maxZ any
	if box, ok := g.ActiveBBox(); ok {
		minX, minY, minZ = box.Min.X, box.Min.Y, box.Min.Z
		maxX, maxY, maxZ = box.Max.X, box.Max.Y, box.Max.Z
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("write grid %q: %w", g.Name(), err)
	}
	res, err := tx.Exec(
		`INSERT INTO grids (name, kind, tile_dim, transform_json, active_voxels,
			min_x, min_y, min_z, max_x, max_y, max_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name(), g.Kind().String(), voxel.TileDim, string(transformJSON),
		g.ActiveVoxelCount(), minX, minY, minZ, maxX, maxY, maxZ,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert grid %q: %w", g.Name(), err)
	}
	gridID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert grid %q: %w", g.Name(), err)
	}
	if _, err := tx.Exec(
		"INSERT INTO grid_trees (grid_id, codec, payload, raw_bytes) VALUES (?, ?, ?, ?)",
		gridID, w.opts.Codec, payload, len(raw),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert tree of grid %q: %w", g.Name(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write grid %q: %w", g.Name(), err)
	}

	monitoring.Logf("[VXB] wrote grid %q to %s (%d voxels, %d -> %d bytes)",
		g.Name(), w.path, g.ActiveVoxelCount(), len(raw), len(payload))
	return nil
}

// Close releases the database handle.
func (w *Writer) Close() error {
	return w.db.Close()
}
