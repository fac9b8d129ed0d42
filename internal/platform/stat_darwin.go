//go:build darwin

package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func atimespec(st *syscall.Stat_t) unix.Timespec {
	return unix.Timespec{Sec: st.Atimespec.Sec, Nsec: st.Atimespec.Nsec}
}
