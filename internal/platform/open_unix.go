//go:build !windows

package platform

import "os"

// openSequential opens path and hints the kernel that access will be a
// single sequential scan. Write opens use read+write so verification can
// reuse the same sharing semantics as the Windows side.
func openSequential(path string, write bool) (*os.File, error) {
	flags := os.O_RDONLY
	if write {
		flags = os.O_RDWR
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	adviseSequential(f)
	return f, nil
}
