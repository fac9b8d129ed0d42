//go:build windows

package platform

import (
	"os"

	"golang.org/x/sys/windows"
)

// openSequential opens path with FILE_FLAG_SEQUENTIAL_SCAN so the cache
// manager read-ahead matches the engine's single-pass access pattern. Write
// opens request read+write sharing.
func openSequential(path string, write bool) (*os.File, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	var access uint32 = windows.GENERIC_READ
	var share uint32 = windows.FILE_SHARE_READ
	if write {
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
		share = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE
	}

	h, err := windows.CreateFile(
		pathPtr,
		access,
		share,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_SEQUENTIAL_SCAN,
		0,
	)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(h), path), nil
}
