package engine

import (
	"fmt"
	"strings"
)

// Request describes one copy run. Exactly one of Files and SourceDir must be
// populated: an explicit file list is flattened into the target directory, a
// directory scan preserves subdirectory structure under it.
type Request struct {
	// Files is the explicit list of source files to copy.
	Files []string

	// SourceDir is the directory to scan when Files is empty.
	SourceDir string
	// Pattern filters scanned file names (filepath.Match syntax). Empty
	// matches everything.
	Pattern string
	// Recursive descends into subdirectories during a scan.
	Recursive bool

	// TargetDir is where entries are written.
	TargetDir string

	Move      bool
	Verify    bool
	Overwrite bool
}

// Validate checks the exactly-one-source invariant and the target.
func (r Request) Validate() error {
	hasFiles := len(r.Files) > 0
	hasDir := strings.TrimSpace(r.SourceDir) != ""
	if hasFiles && hasDir {
		return fmt.Errorf("%w: both file list and source directory given", ErrInvalidArgument)
	}
	if !hasFiles && !hasDir {
		return fmt.Errorf("%w: no file list or source directory given", ErrInvalidArgument)
	}
	if strings.TrimSpace(r.TargetDir) == "" {
		return fmt.Errorf("%w: no target directory given", ErrInvalidArgument)
	}
	for _, f := range r.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: empty source path in file list", ErrInvalidArgument)
		}
	}
	return nil
}
