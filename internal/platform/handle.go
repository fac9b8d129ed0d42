package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
)

type handleState int

const (
	stateClosed handleState = iota
	stateRead
	stateWrite
)

// AccessHandle owns exactly one native file handle. The raw handle never
// leaves this type; Close flushes (if the handle was opened writable) and
// releases it exactly once, on every exit path the caller takes.
type AccessHandle struct {
	path  string
	file  *os.File
	state handleState
}

// NewAccessHandle returns a closed handle for path. Nothing is opened until
// OpenRead or OpenWrite.
func NewAccessHandle(path string) *AccessHandle {
	return &AccessHandle{path: path}
}

// Path returns the path the handle was created for.
func (h *AccessHandle) Path() string { return h.path }

// OpenRead opens the file for sequential reading. Opening an already-open
// handle is a no-op.
func (h *AccessHandle) OpenRead() error {
	if h.state != stateClosed {
		return nil
	}
	f, err := openSequential(h.path, false)
	if err != nil {
		return fmt.Errorf("open read %s: %w", h.path, err)
	}
	h.file = f
	h.state = stateRead
	return nil
}

// OpenWrite opens the existing file for sequential writing with read+write
// sharing. Opening an already-open handle is a no-op.
func (h *AccessHandle) OpenWrite() error {
	if h.state != stateClosed {
		return nil
	}
	f, err := openSequential(h.path, true)
	if err != nil {
		return fmt.Errorf("open write %s: %w", h.path, err)
	}
	h.file = f
	h.state = stateWrite
	return nil
}

// Read fills buf with the next chunk. End of stream is reported as (0, nil),
// never as an error.
func (h *AccessHandle) Read(buf []byte) (int, error) {
	if h.state == stateClosed {
		return 0, fmt.Errorf("read %s: handle not open", h.path)
	}
	n, err := h.file.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("read %s: %w", h.path, err)
	}
	return n, nil
}

// Write writes buf and returns the byte count that landed. Callers treat
// anything short of len(buf) as a failed chunk.
func (h *AccessHandle) Write(buf []byte) (int, error) {
	if h.state != stateWrite {
		return 0, fmt.Errorf("write %s: handle not open for writing", h.path)
	}
	n, err := h.file.Write(buf)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", h.path, err)
	}
	return n, nil
}

// Flush forces written data to the device. It is a no-op unless the handle
// was opened writable.
func (h *AccessHandle) Flush() error {
	if h.state != stateWrite {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("flush %s: %w", h.path, err)
	}
	return nil
}

// Close flushes (when writable) and releases the handle. The release itself
// always happens, even when the flush fails; any error is returned for
// logging only. Closing a closed handle is a no-op.
func (h *AccessHandle) Close() error {
	if h.state == stateClosed {
		return nil
	}
	flushErr := h.Flush()
	closeErr := h.file.Close()
	h.file = nil
	h.state = stateClosed
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", h.path, closeErr)
	}
	return nil
}

// Create creates the file at path. Without overwrite an existing file fails
// with the OS already-exists error. A positive length pre-extends the file so
// the writer fills pre-allocated extents instead of growing the file chunk by
// chunk.
func Create(path string, overwrite bool, length int64) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if length > 0 {
		preallocate(f, length)
		if err := f.Truncate(length); err != nil {
			f.Close()
			return fmt.Errorf("extend %s to %d: %w", path, length, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

// FileLength opens path momentarily, solely to query its size.
func FileLength(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return fi.Size(), nil
}
