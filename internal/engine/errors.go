package engine

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrInvalidArgument marks a local precondition failure: a malformed request,
// an empty path, or a self-copy. Never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// IntegrityError reports a post-copy digest mismatch between what was read
// from the source and what landed in the target.
type IntegrityError struct {
	Path         string
	SourceDigest string
	TargetDigest string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity mismatch for %s: source %s, target %s",
		e.Path, e.SourceDigest, e.TargetDigest)
}

// osErrorCode digs the OS error code out of a wrapped native failure.
// Returns 0 when the chain carries no errno.
func osErrorCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}
