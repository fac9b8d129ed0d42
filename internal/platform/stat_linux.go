//go:build linux

package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func atimespec(st *syscall.Stat_t) unix.Timespec {
	return unix.Timespec{Sec: st.Atim.Sec, Nsec: st.Atim.Nsec}
}
