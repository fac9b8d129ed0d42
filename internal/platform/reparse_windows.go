//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// ResolveIndirection resolves path to the physical location the OS would
// actually read or write. Paths without the reparse-point attribute come back
// absolute and unresolved. Resolution opens the path read-only with backup
// semantics (so directories and junctions can be opened) and asks the OS for
// the final normalized path name.
func ResolveIndirection(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		return path, false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, false, fmt.Errorf("absolutize %s: %w", path, err)
	}

	absPtr, err := windows.UTF16PtrFromString(abs)
	if err != nil {
		return abs, false, fmt.Errorf("encode %s: %w", abs, err)
	}

	attrs, err := windows.GetFileAttributes(absPtr)
	if err != nil {
		return abs, false, fmt.Errorf("attributes %s: %w", abs, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT == 0 {
		return abs, false, nil
	}

	// Open without FILE_FLAG_OPEN_REPARSE_POINT so the OS follows the
	// indirection to its final target.
	h, err := windows.CreateFile(
		absPtr,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return abs, false, fmt.Errorf("open %s: %w", abs, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetFinalPathNameByHandle(h, &buf[0], uint32(len(buf)), windows.FILE_NAME_NORMALIZED)
	if err != nil {
		return abs, false, fmt.Errorf("final path %s: %w", abs, err)
	}
	if int(n) > len(buf) {
		buf = make([]uint16, n)
		n, err = windows.GetFinalPathNameByHandle(h, &buf[0], uint32(len(buf)), windows.FILE_NAME_NORMALIZED)
		if err != nil {
			return abs, false, fmt.Errorf("final path %s: %w", abs, err)
		}
	}

	resolved := windows.UTF16ToString(buf[:n])
	if resolved == "" {
		return abs, false, fmt.Errorf("final path %s: %w", abs, os.ErrInvalid)
	}
	return resolved, true, nil
}
