package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/akesseler/QuickCopy/internal/platform"
	"github.com/akesseler/QuickCopy/internal/stats"
)

// Entry is one planned copy operation. Built once, immutable afterwards, and
// consumed by exactly one Handler.
type Entry struct {
	// Source is the normalized path of the physical file to read.
	Source string
	// Origin is the normalized original reference when Source differs
	// because of reparse resolution; empty otherwise. Diagnostics only —
	// all transfer operations use Source.
	Origin string
	// Target is the normalized path to write.
	Target string

	Move      bool
	Verify    bool
	Overwrite bool
}

// Builder resolves copy requests into executable entry handlers. Every
// source path is normalized and reparse-resolved exactly once, here.
type Builder struct {
	Log     *zap.Logger
	Stats   *stats.Collector
	Limiter *rate.Limiter
	Digest  DigestAlgorithm
}

// Build turns req into an ordered playlist of handlers. Directory scans emit
// entries in filesystem enumeration order; callers wanting determinism must
// sort the result themselves.
func (b *Builder) Build(req Request) ([]*Handler, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	collector := b.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	var (
		entries []Entry
		err     error
	)
	if len(req.Files) > 0 {
		entries, err = b.explicitEntries(req, log)
	} else {
		entries, err = b.scanEntries(req, log)
	}
	if err != nil {
		return nil, err
	}

	handlers := make([]*Handler, 0, len(entries))
	for _, e := range entries {
		handlers = append(handlers, newHandler(e, log, collector, b.Limiter, b.Digest))
	}
	return handlers, nil
}

// explicitEntries flattens every listed file into the target directory root;
// sibling directory structure is discarded.
func (b *Builder) explicitEntries(req Request, log *zap.Logger) ([]Entry, error) {
	entries := make([]Entry, 0, len(req.Files))
	for _, file := range req.Files {
		source, origin := resolveSource(file, log)
		source, err := platform.NormalizePath(source)
		if err != nil {
			return nil, fmt.Errorf("%w: source %q", ErrInvalidArgument, file)
		}
		// The target keeps the name the caller gave, not the name of a
		// resolved link destination.
		target, err := platform.NormalizePath(filepath.Join(req.TargetDir, filepath.Base(file)))
		if err != nil {
			return nil, fmt.Errorf("%w: target for %q", ErrInvalidArgument, file)
		}
		entries = append(entries, Entry{
			Source:    source,
			Origin:    origin,
			Target:    target,
			Move:      req.Move,
			Verify:    req.Verify,
			Overwrite: req.Overwrite,
		})
	}
	return entries, nil
}

// scanEntries enumerates files under the (reparse-resolved) source directory
// and re-roots their relative paths under the target directory.
func (b *Builder) scanEntries(req Request, log *zap.Logger) ([]Entry, error) {
	root, _ := resolveSource(req.SourceDir, log)

	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("%w: source %s is not a directory", ErrInvalidArgument, root)
	}

	files, err := enumerate(root, req.Pattern, req.Recursive, log)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			log.Warn("skipping file outside source root",
				zap.String("path", file), zap.Error(err))
			continue
		}

		source, origin := resolveSource(file, log)
		source, err = platform.NormalizePath(source)
		if err != nil {
			return nil, fmt.Errorf("%w: source %q", ErrInvalidArgument, file)
		}
		target, err := platform.NormalizePath(filepath.Join(req.TargetDir, rel))
		if err != nil {
			return nil, fmt.Errorf("%w: target for %q", ErrInvalidArgument, file)
		}
		entries = append(entries, Entry{
			Source:    source,
			Origin:    origin,
			Target:    target,
			Move:      req.Move,
			Verify:    req.Verify,
			Overwrite: req.Overwrite,
		})
	}
	return entries, nil
}

// enumerate lists matching files under root in filesystem order.
func enumerate(root, pattern string, recursive bool, log *zap.Logger) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return nil, fmt.Errorf("%w: pattern %q", ErrInvalidArgument, pattern)
		}
	}

	var files []string
	if !recursive {
		dirents, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", root, err)
		}
		for _, d := range dirents {
			if d.IsDir() || !matches(pattern, d.Name()) {
				continue
			}
			files = append(files, filepath.Join(root, d.Name()))
		}
		return files, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !matches(pattern, d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}
	return files, nil
}

func matches(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

// resolveSource runs reparse resolution for one path. Failures are non-fatal
// per file: the original path is kept and a warning logged.
func resolveSource(path string, log *zap.Logger) (source, origin string) {
	resolved, wasResolved, err := platform.ResolveIndirection(path)
	if err != nil {
		log.Warn("reparse resolution failed, using original path",
			zap.String("path", path),
			zap.Int("code", osErrorCode(err)),
			zap.Error(err))
		return path, ""
	}
	if !wasResolved {
		return resolved, ""
	}
	origin, err = platform.NormalizePath(path)
	if err != nil {
		origin = path
	}
	return resolved, origin
}
