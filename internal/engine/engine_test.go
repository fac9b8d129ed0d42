package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDirectoryScan(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	target := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(src, "a.txt"), []byte("alpha"))
	writeFile(t, filepath.Join(src, "sub", "b.txt"), []byte("beta"))

	result := Run(context.Background(), Config{
		Request: Request{
			SourceDir: src,
			Recursive: true,
			Verify:    true,
			TargetDir: target,
		},
		Workers: 2,
	})

	require.NoError(t, result.Err)
	assert.False(t, result.Canceled)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, int64(2), result.Stats.EntriesPlanned)
	assert.Equal(t, int64(2), result.Stats.EntriesCopied)
	assert.Equal(t, int64(2), result.Stats.EntriesVerified)
	assert.Equal(t, int64(9), result.Stats.BytesCopied)

	got, err := os.ReadFile(filepath.Join(target, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), got)
}

func TestRunExplicitFilesWithMove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "nested", "b.txt")
	writeFile(t, a, []byte("a"))
	writeFile(t, b, []byte("b"))
	target := filepath.Join(dir, "out")

	result := Run(context.Background(), Config{
		Request: Request{
			Files:     []string{a, b},
			TargetDir: target,
			Move:      true,
		},
	})

	require.NoError(t, result.Err)
	assert.Equal(t, int64(2), result.Stats.SourcesRemoved)

	for _, src := range []string{a, b} {
		_, err := os.Stat(src)
		assert.True(t, os.IsNotExist(err), "moved source %s still exists", src)
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := os.Stat(filepath.Join(target, name))
		assert.NoError(t, err)
	}
}

func TestRunInvalidRequest(t *testing.T) {
	result := Run(context.Background(), Config{})
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, ErrInvalidArgument)
	assert.Equal(t, 0, result.Attempted)
}

func TestRunReportsFailuresWithoutCrashing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	writeFile(t, good, []byte("ok"))

	result := Run(context.Background(), Config{
		Request: Request{
			Files:     []string{good, filepath.Join(dir, "missing.txt")},
			TargetDir: filepath.Join(dir, "out"),
		},
		Workers: 1,
	})

	require.Error(t, result.Err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, int64(1), result.Stats.EntriesCopied)
	assert.Equal(t, int64(1), result.Stats.EntriesFailed)
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.bin"), randomData(t, 1024))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, Config{
		Request: Request{SourceDir: src, TargetDir: filepath.Join(dir, "out")},
	})

	require.NoError(t, result.Err)
	assert.True(t, result.Canceled)
	assert.Equal(t, 0, result.Attempted)
}

func TestRunWithBandwidthLimit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	writeFile(t, src, randomData(t, 64*1024))

	result := Run(context.Background(), Config{
		Request: Request{
			Files:     []string{src},
			TargetDir: filepath.Join(dir, "out"),
		},
		BWLimit: 10 << 20, // generous; exercises the limiter path only
	})

	require.NoError(t, result.Err)
	assert.Equal(t, int64(64*1024), result.Stats.BytesCopied)
}
