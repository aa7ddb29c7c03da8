// Package volume owns the cache layer of the voxel data model.
//
// Responsibilities: process-wide deduplication of file-backed grids,
// two-tier (metadata and tree) reference counting, lazy tree loading
// with eviction, frame-sequence resolution, and dense export helpers.
// Key types: Cache, Handle, Volume, GridList.
//
// Dependency rule: volume builds on voxel and vxb; neither of those
// packages may depend back on it.
package volume
