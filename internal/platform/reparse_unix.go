//go:build !windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveIndirection resolves path to the physical location the OS would
// actually read or write. Symlinks are the reparse points of unix systems;
// a path that is not one comes back absolute and unresolved.
func ResolveIndirection(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		return path, false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, false, fmt.Errorf("absolutize %s: %w", path, err)
	}

	fi, err := os.Lstat(abs)
	if err != nil {
		return abs, false, fmt.Errorf("lstat %s: %w", abs, err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return abs, false, nil
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, false, fmt.Errorf("resolve link %s: %w", abs, err)
	}
	return resolved, true, nil
}
