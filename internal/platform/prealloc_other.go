//go:build !linux

package platform

import "os"

// preallocate is a no-op outside Linux; Create's truncate sets the length.
func preallocate(_ *os.File, _ int64) {}
