//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akesseler/QuickCopy/internal/winpath"
)

// NormalizePath converts path into a fully qualified extended-length form so
// native calls bypass the MAX_PATH ceiling. Already long-form paths pass
// through untouched; Clean would mangle the \\?\ marker.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("normalize: %w", ErrEmptyPath)
	}
	if winpath.IsLongForm(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", path, err)
	}
	long, err := winpath.ToLongForm(abs)
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", path, err)
	}
	return long, nil
}
