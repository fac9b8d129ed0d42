//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel at sequential access. Advisory only;
// not supported on all filesystems.
func adviseSequential(f *os.File) {
	//nolint:errcheck // fadvise is advisory
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
