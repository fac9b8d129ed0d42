//go:build darwin

package platform

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

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
		spc = st.Bsize / sectorSize
	}
	return Geometry{
		SectorsPerCluster: spc,
		BytesPerSector:    sectorSize,
		FreeClusters:      st.Bfree,
		TotalClusters:     st.Blocks,
	}, nil
}
