//go:build linux

package platform

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Statfs reports the filesystem block size, not the device sector size, so
// blocks map to clusters over a conventional 512-byte sector.
const sectorSize = 512

// QueryGeometry probes the volume holding path for its block layout.
func QueryGeometry(path string) (Geometry, error) {
	if strings.TrimSpace(path) == "" {
		return Geometry{}, fmt.Errorf("query geometry: %w", ErrEmptyPath)
	}

	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Geometry{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	spc := uint32(1)
	if st.Bsize > sectorSize {
		spc = uint32(st.Bsize / sectorSize)
	}
	return Geometry{
		SectorsPerCluster: spc,
		BytesPerSector:    sectorSize,
		FreeClusters:      st.Bfree,
		TotalClusters:     st.Blocks,
	}, nil
}
