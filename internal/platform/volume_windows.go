//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// QueryGeometry probes the volume holding path via GetDiskFreeSpace, which
// reports the real sector and cluster sizing for both local volumes and
// network shares.
func QueryGeometry(path string) (Geometry, error) {
	if strings.TrimSpace(path) == "" {
		return Geometry{}, fmt.Errorf("query geometry: %w", ErrEmptyPath)
	}

	root := filepath.VolumeName(path)
	if root == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return Geometry{}, fmt.Errorf("resolve volume of %s: %w", path, err)
		}
		root = filepath.VolumeName(abs)
	}
	root += `\`

	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return Geometry{}, fmt.Errorf("encode volume root %s: %w", root, err)
	}

	var sectorsPerCluster, bytesPerSector, freeClusters, totalClusters uint32
	if err := windows.GetDiskFreeSpace(rootPtr, &sectorsPerCluster, &bytesPerSector, &freeClusters, &totalClusters); err != nil {
		return Geometry{}, fmt.Errorf("disk free space %s: %w", root, err)
	}

	return Geometry{
		SectorsPerCluster: sectorsPerCluster,
		BytesPerSector:    bytesPerSector,
		FreeClusters:      uint64(freeClusters),
		TotalClusters:     uint64(totalClusters),
	}, nil
}
