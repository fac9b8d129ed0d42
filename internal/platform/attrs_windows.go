//go:build windows

package platform

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// CloneAttributes copies the creation/last-write/last-access timestamps and
// the attribute flags from src onto dst.
func CloneAttributes(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	data, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return fmt.Errorf("stat %s: unexpected attribute data", src)
	}

	dstPtr, err := windows.UTF16PtrFromString(dst)
	if err != nil {
		return fmt.Errorf("encode %s: %w", dst, err)
	}

	h, err := windows.CreateFile(
		dstPtr,
		windows.FILE_WRITE_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return fmt.Errorf("open %s for attributes: %w", dst, err)
	}

	creation := windows.Filetime(data.CreationTime)
	access := windows.Filetime(data.LastAccessTime)
	write := windows.Filetime(data.LastWriteTime)
	timeErr := windows.SetFileTime(h, &creation, &access, &write)
	closeErr := windows.CloseHandle(h)
	if timeErr != nil {
		return fmt.Errorf("set times %s: %w", dst, timeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", dst, closeErr)
	}

	if err := windows.SetFileAttributes(dstPtr, data.FileAttributes); err != nil {
		return fmt.Errorf("set attributes %s: %w", dst, err)
	}
	return nil
}

// MakeWritable strips the attribute flags down to a baseline the engine can
// overwrite and delete.
func MakeWritable(path string) error {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := windows.SetFileAttributes(pathPtr, windows.FILE_ATTRIBUTE_NORMAL); err != nil {
		return fmt.Errorf("reset attributes %s: %w", path, err)
	}
	return nil
}
