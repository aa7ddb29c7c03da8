// Package vxb reads and writes VXB container files, the backing format of
// the volume cache. One container is one SQLite database holding grid
// metadata rows plus one compressed tree payload per grid.
//
// Responsibilities:
//   - Create containers and stamp them with a UUID, creator, and timestamp
//   - Write grids: a metadata row and a compressed wire-encoded tree in one
//     transaction
//   - Enumerate grid metadata without touching any payload
//   - Read and decode exactly one grid's tree on demand
//
// Key types: File (reader), Writer, CreateOptions.
//
// The schema is versioned through embedded golang-migrate migrations;
// opening a container with an unknown schema version fails rather than
// guessing. Because the container is plain SQLite, the metadata columns
// (kind, active_voxels, index-space bounds) are queryable with any sqlite
// client without linking this library.
//
// Dependency rule: vxb builds on voxel and knows nothing about the cache
// layered above it.
package vxb
