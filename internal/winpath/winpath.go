// Package winpath rewrites Windows paths into their extended-length form so
// that native calls are not subject to the legacy MAX_PATH ceiling, and
// classifies paths as network-addressed (UNC) or local.
//
// All functions are pure string transforms; the platform layer decides
// whether to apply them.
package winpath

import (
	"errors"
	"strings"
)

const (
	// LongPrefix marks an extended-length local path (\\?\C:\...).
	LongPrefix = `\\?\`
	// LongPrefixUNC marks an extended-length network path (\\?\UNC\server\share).
	LongPrefixUNC = `\\?\UNC\`

	separator = '\\'
)

// ErrInvalidPath is returned for empty or whitespace-only input.
var ErrInvalidPath = errors.New("winpath: invalid path")

// IsLongForm reports whether path already carries an extended-length prefix,
// either local or UNC.
func IsLongForm(path string) bool {
	return strings.HasPrefix(path, LongPrefix)
}

// IsNetworkPath reports whether path addresses a network share rather than a
// local volume. Extended-length UNC paths count as network paths; other
// extended-length paths do not. A bare run of separators is not a network
// path.
func IsNetworkPath(path string) bool {
	if len(path) >= len(LongPrefixUNC) && strings.EqualFold(path[:len(LongPrefixUNC)], LongPrefixUNC) {
		return true
	}
	if IsLongForm(path) {
		return false
	}
	if !strings.HasPrefix(path, `\\`) {
		return false
	}
	return strings.TrimLeft(path, `\`) != ""
}

// ToLongForm converts path into its extended-length form. Paths of length two
// or less pass through unchanged, as do paths that are already long-form.
// Network paths are rewritten under the UNC marker with their leading
// separators stripped; all other paths get the local marker prepended.
// The transform is idempotent.
func ToLongForm(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	if len(path) <= 2 {
		return path, nil
	}
	if IsLongForm(path) {
		return path, nil
	}
	if IsNetworkPath(path) {
		return LongPrefixUNC + strings.TrimLeft(path, `\`), nil
	}
	return LongPrefix + path, nil
}
