// Package platform wraps the native filesystem surface the engine rides on:
// volume geometry queries, reparse-point resolution, path normalization and
// owned access handles. Anything OS-specific lives in per-OS files.
package platform

import "errors"

// ErrEmptyPath is returned when an empty or whitespace-only path reaches an
// operation that needs a real one.
var ErrEmptyPath = errors.New("platform: empty path")

// Geometry describes the physical block layout of a storage volume. It is
// queried fresh for every entry; source and target may sit on volumes with
// different layouts.
type Geometry struct {
	SectorsPerCluster uint32
	BytesPerSector    uint32
	FreeClusters      uint64
	TotalClusters     uint64
}

// PageSize returns the cluster size in bytes, the preferred I/O unit for the
// volume.
func (g Geometry) PageSize() int64 {
	return int64(g.BytesPerSector) * int64(g.SectorsPerCluster)
}

// FreeBytes returns the remaining capacity of the volume.
func (g Geometry) FreeBytes() int64 {
	return g.PageSize() * int64(g.FreeClusters)
}
