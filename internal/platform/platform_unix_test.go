//go:build !windows

package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryGeometry(t *testing.T) {
	geo, err := QueryGeometry(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, geo.BytesPerSector)
	assert.Positive(t, geo.SectorsPerCluster)
	assert.Positive(t, geo.PageSize())
	assert.GreaterOrEqual(t, geo.TotalClusters, geo.FreeClusters)
}

func TestQueryGeometryEmptyPath(t *testing.T) {
	for _, p := range []string{"", "   "} {
		_, err := QueryGeometry(p)
		assert.ErrorIs(t, err, ErrEmptyPath, "input %q", p)
	}
}

func TestQueryGeometrySameVolumeAgrees(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	a, err := QueryGeometry(dir)
	require.NoError(t, err)
	b, err := QueryGeometry(sub)
	require.NoError(t, err)
	assert.Equal(t, a.PageSize(), b.PageSize())
}

func TestResolveIndirectionPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	resolved, wasResolved, err := ResolveIndirection(path)
	require.NoError(t, err)
	assert.False(t, wasResolved)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestResolveIndirectionSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0o644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(real, link))

	resolved, wasResolved, err := ResolveIndirection(link)
	require.NoError(t, err)
	assert.True(t, wasResolved)

	expected, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.Equal(t, expected, resolved)
}

func TestResolveIndirectionEmptyPath(t *testing.T) {
	resolved, wasResolved, err := ResolveIndirection("")
	require.NoError(t, err)
	assert.False(t, wasResolved)
	assert.Empty(t, resolved)
}

func TestResolveIndirectionMissingPath(t *testing.T) {
	_, wasResolved, err := ResolveIndirection(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.False(t, wasResolved)
}

func TestNormalizePath(t *testing.T) {
	abs, err := NormalizePath("relative/name.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	_, err = NormalizePath("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestCloneAttributes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o640))
	require.NoError(t, os.WriteFile(dst, []byte("a"), 0o644))

	stamp := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, stamp, stamp))

	require.NoError(t, CloneAttributes(src, dst))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, srcInfo.Mode().Perm(), dstInfo.Mode().Perm())
	assert.Equal(t, srcInfo.ModTime().Unix(), dstInfo.ModTime().Unix())
}

func TestMakeWritable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ro.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o400))

	require.NoError(t, MakeWritable(path))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode().Perm()&0o200)
}
