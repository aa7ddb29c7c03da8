// Package voxel owns the sparse volumetric grid data model.
//
// Responsibilities: grid kinds and metadata, index-space coordinates and
// transforms, the tile tree holding voxel payloads, the wire encoding used
// by container files, and dense export.
// Key types: Grid, Tree, Kind, Coord, CoordBBox, Transform.
//
// Dependency rule: voxel knows nothing about caching or container I/O;
// vxb and volume build on top of it.
package voxel
