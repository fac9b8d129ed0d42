//go:build !windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizePath converts path into a fully qualified form. Long-form
// prefixing is a Windows concern; here normalization is plain
// absolutization.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("normalize: %w", ErrEmptyPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", path, err)
	}
	return abs, nil
}
