package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"explicit files", Request{Files: []string{"a"}, TargetDir: "t"}, true},
		{"directory scan", Request{SourceDir: "d", TargetDir: "t"}, true},
		{"both populated", Request{Files: []string{"a"}, SourceDir: "d", TargetDir: "t"}, false},
		{"neither populated", Request{TargetDir: "t"}, false},
		{"no target", Request{Files: []string{"a"}}, false},
		{"blank target", Request{Files: []string{"a"}, TargetDir: "   "}, false},
		{"empty path in list", Request{Files: []string{"a", " "}, TargetDir: "t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestBuildExplicitFilesFlattens(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "one", "a.txt")
	b := filepath.Join(dir, "two", "deep", "b.txt")
	writeFile(t, a, []byte("a"))
	writeFile(t, b, []byte("b"))
	target := filepath.Join(dir, "out")

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		Files:     []string{a, b},
		TargetDir: target,
	})
	require.NoError(t, err)
	require.Len(t, handlers, 2)

	// Sibling directory structure is discarded.
	assert.Equal(t, filepath.Join(target, "a.txt"), handlers[0].Entry().Target)
	assert.Equal(t, filepath.Join(target, "b.txt"), handlers[1].Entry().Target)
	for _, h := range handlers {
		assert.True(t, filepath.IsAbs(h.Entry().Source))
		assert.True(t, filepath.IsAbs(h.Entry().Target))
		assert.Empty(t, h.Entry().Origin)
	}
}

func TestBuildDirectoryScanPreservesStructure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "root.txt"), []byte("r"))
	writeFile(t, filepath.Join(src, "sub", "deep", "nested.txt"), []byte("n"))
	target := filepath.Join(dir, "out")

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		SourceDir: src,
		Recursive: true,
		TargetDir: target,
	})
	require.NoError(t, err)
	require.Len(t, handlers, 2)

	targets := make(map[string]bool)
	for _, h := range handlers {
		targets[h.Entry().Target] = true
	}
	assert.True(t, targets[filepath.Join(target, "root.txt")])
	assert.True(t, targets[filepath.Join(target, "sub", "deep", "nested.txt")])
}

func TestBuildDirectoryScanNonRecursive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "top.txt"), []byte("t"))
	writeFile(t, filepath.Join(src, "sub", "skipped.txt"), []byte("s"))

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		SourceDir: src,
		TargetDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	assert.Equal(t, "top.txt", filepath.Base(handlers[0].Entry().Source))
}

func TestBuildPattern(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "keep.iso"), []byte("k"))
	writeFile(t, filepath.Join(src, "drop.txt"), []byte("d"))
	writeFile(t, filepath.Join(src, "sub", "keep2.iso"), []byte("k2"))

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		SourceDir: src,
		Pattern:   "*.iso",
		Recursive: true,
		TargetDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	require.Len(t, handlers, 2)
	for _, h := range handlers {
		assert.Equal(t, ".iso", filepath.Ext(h.Entry().Source))
	}
}

func TestBuildBadPattern(t *testing.T) {
	dir := t.TempDir()
	builder := &Builder{Log: zap.NewNop()}
	_, err := builder.Build(Request{
		SourceDir: dir,
		Pattern:   "[unclosed",
		TargetDir: filepath.Join(dir, "out"),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildMissingSourceDir(t *testing.T) {
	dir := t.TempDir()
	builder := &Builder{Log: zap.NewNop()}
	_, err := builder.Build(Request{
		SourceDir: filepath.Join(dir, "nope"),
		TargetDir: filepath.Join(dir, "out"),
	})
	assert.Error(t, err)
}

func TestBuildResolvesSymlinkSources(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	writeFile(t, real, []byte("data"))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(real, link))

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		Files:     []string{link},
		TargetDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	require.Len(t, handlers, 1)

	e := handlers[0].Entry()
	resolved, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.Equal(t, resolved, e.Source)
	assert.NotEmpty(t, e.Origin, "origin retains the original reference")
	assert.Equal(t, filepath.Join(dir, "out", "link.txt"), e.Target,
		"target keeps the name the caller gave, not the link destination")
}

func TestBuildFlagsCopiedToEntries(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "f.bin")
	writeFile(t, src, []byte("x"))

	builder := &Builder{Log: zap.NewNop()}
	handlers, err := builder.Build(Request{
		Files:     []string{src},
		TargetDir: filepath.Join(dir, "out"),
		Move:      true,
		Verify:    true,
		Overwrite: true,
	})
	require.NoError(t, err)
	require.Len(t, handlers, 1)

	e := handlers[0].Entry()
	assert.True(t, e.Move)
	assert.True(t, e.Verify)
	assert.True(t, e.Overwrite)
}
