//go:build !windows

package platform

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// CloneAttributes copies mode bits and access/modification timestamps from
// src onto dst. Creation time is not settable through the unix surface.
func CloneAttributes(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.Chmod(dst, fi.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}

	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	times := []unix.Timespec{
		atimespec(st),
		unix.NsecToTimespec(fi.ModTime().UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, dst, times, 0); err != nil {
		return fmt.Errorf("utimensat %s: %w", dst, err)
	}
	return nil
}

// MakeWritable resets the file to a baseline the current user can overwrite
// and delete.
func MakeWritable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.Chmod(path, fi.Mode().Perm()|0o200); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
