package engine

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/akesseler/QuickCopy/internal/platform"
	"github.com/akesseler/QuickCopy/internal/stats"
)

// fallbackChunkSize is used when source and target volumes agree on neither
// page size nor sector size. 512 is valid unbuffered I/O sizing everywhere.
const fallbackChunkSize = 512

// verifyBufferSize is the read size for the verification re-read; alignment
// does not matter for hashing.
const verifyBufferSize = 32 * 1024

// Outcome is the terminal state of one entry. Owned and mutated only by the
// handler that produced it.
type Outcome struct {
	Err      error
	Canceled bool
}

// Aborted reports the combined error-or-canceled condition that
// short-circuits the remaining stages of an entry.
func (o Outcome) Aborted() bool {
	return o.Err != nil || o.Canceled
}

// Handler executes exactly one playlist entry through the
// validate → transfer → verify → finalize → cleanup pipeline. Not re-entrant
// and not restartable after completion.
type Handler struct {
	entry   Entry
	log     *zap.Logger
	stats   *stats.Collector
	limiter *rate.Limiter
	digest  DigestAlgorithm

	outcome       Outcome
	executed      bool
	targetCreated bool
	sourceDigest  string
}

func newHandler(e Entry, log *zap.Logger, collector *stats.Collector, limiter *rate.Limiter, digest DigestAlgorithm) *Handler {
	return &Handler{
		entry:   e,
		log:     log.With(zap.String("source", e.Source), zap.String("target", e.Target)),
		stats:   collector,
		limiter: limiter,
		digest:  digest,
	}
}

// Entry returns the immutable entry this handler owns.
func (h *Handler) Entry() Entry { return h.entry }

// Outcome returns the terminal state. Meaningful once Execute returned.
func (h *Handler) Outcome() Outcome { return h.outcome }

// Execute runs the entry to completion, blocking the calling goroutine. The
// shared cancellation context is re-checked at every stage boundary and
// between chunks; cleanup always runs.
func (h *Handler) Execute(ctx context.Context) Outcome {
	if h.executed {
		h.outcome.Err = fmt.Errorf("%w: entry already executed", ErrInvalidArgument)
		return h.outcome
	}
	h.executed = true

	h.stage(ctx, "validate", func() error { return h.validate() })
	h.stage(ctx, "transfer", func() error { return h.transfer(ctx) })
	if h.entry.Verify {
		h.stage(ctx, "verify", func() error { return h.verifyTarget(ctx) })
	}
	h.stage(ctx, "finalize", func() error { return h.finalize() })
	h.cleanup()

	switch {
	case h.outcome.Err != nil:
		h.stats.AddEntriesFailed(1)
	case h.outcome.Canceled:
		h.stats.AddEntriesCanceled(1)
		h.log.Info("entry canceled")
	default:
		h.stats.AddEntriesCopied(1)
		h.log.Debug("entry done", zap.Bool("moved", h.entry.Move))
	}
	return h.outcome
}

// stage runs fn unless the entry already aborted or the run was canceled.
// Stage errors stop the remaining stages of this entry but never propagate
// past the handler.
func (h *Handler) stage(ctx context.Context, name string, fn func() error) {
	if h.outcome.Aborted() {
		return
	}
	if ctx.Err() != nil {
		h.outcome.Canceled = true
		return
	}
	if err := fn(); err != nil {
		if errors.Is(err, context.Canceled) {
			h.outcome.Canceled = true
			return
		}
		h.outcome.Err = err
		h.log.Error("entry stage failed",
			zap.String("stage", name),
			zap.Int("code", osErrorCode(err)),
			zap.Error(err))
	}
}

// validate rejects self-copies, checks the source, and prepares the target
// location.
func (h *Handler) validate() error {
	if strings.EqualFold(h.entry.Source, h.entry.Target) {
		return fmt.Errorf("%w: source and target are the same file: %s",
			ErrInvalidArgument, h.entry.Source)
	}

	fi, err := os.Stat(h.entry.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: source %s is a directory", ErrInvalidArgument, h.entry.Source)
	}

	if err := os.MkdirAll(filepath.Dir(h.entry.Target), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	// A pre-existing target may carry read-only attributes; strip them to a
	// writable baseline before the overwrite.
	if h.entry.Overwrite {
		if _, err := os.Lstat(h.entry.Target); err == nil {
			if err := platform.MakeWritable(h.entry.Target); err != nil {
				return fmt.Errorf("reset target attributes: %w", err)
			}
		}
	}
	return nil
}

// pickChunkSize chooses the transfer unit from the two volume geometries:
// the shared page size, else the shared sector size, else the fixed
// fallback. The larger shared unit minimizes syscalls while staying valid on
// both volumes.
func pickChunkSize(src, dst platform.Geometry) int64 {
	if p := src.PageSize(); p > 0 && p == dst.PageSize() {
		return p
	}
	if src.BytesPerSector > 0 && src.BytesPerSector == dst.BytesPerSector {
		return int64(src.BytesPerSector)
	}
	return fallbackChunkSize
}

// chunkSize queries both volumes fresh; geometry is never cached because
// source and target may sit on different volumes with different layouts.
func (h *Handler) chunkSize() (int64, error) {
	srcGeo, err := platform.QueryGeometry(h.entry.Source)
	if err != nil {
		return 0, fmt.Errorf("source geometry: %w", err)
	}
	dstGeo, err := platform.QueryGeometry(filepath.Dir(h.entry.Target))
	if err != nil {
		return 0, fmt.Errorf("target geometry: %w", err)
	}
	return pickChunkSize(srcGeo, dstGeo), nil
}

// transfer pre-creates the target at the source's current length and streams
// chunks through a geometry-sized buffer, hashing inline when verification
// is requested. Cancellation between chunks is not an error; a short write
// is.
func (h *Handler) transfer(ctx context.Context) error {
	length, err := platform.FileLength(h.entry.Source)
	if err != nil {
		return err
	}

	size, err := h.chunkSize()
	if err != nil {
		return err
	}

	var digest hash.Hash
	if h.entry.Verify {
		if digest, err = NewDigest(h.digest); err != nil {
			return err
		}
	}

	if err := platform.Create(h.entry.Target, h.entry.Overwrite, length); err != nil {
		return err
	}
	h.targetCreated = true

	src := platform.NewAccessHandle(h.entry.Source)
	if err := src.OpenRead(); err != nil {
		return err
	}
	defer h.release(src)

	dst := platform.NewAccessHandle(h.entry.Target)
	if err := dst.OpenWrite(); err != nil {
		return err
	}
	defer h.release(dst)

	buf := make([]byte, size)
	for {
		if ctx.Err() != nil {
			h.outcome.Canceled = true
			return nil
		}

		n, err := src.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}

		if h.limiter != nil {
			if err := h.waitQuota(ctx, n); err != nil {
				if ctx.Err() != nil {
					h.outcome.Canceled = true
					return nil
				}
				return fmt.Errorf("throttle %s: %w", h.entry.Source, err)
			}
		}

		w, err := dst.Write(buf[:n])
		if err != nil {
			return err
		}
		if w != n {
			return fmt.Errorf("short write to %s: %d of %d bytes", h.entry.Target, w, n)
		}

		if digest != nil {
			digest.Write(buf[:n])
		}
		h.stats.AddBytesCopied(int64(n))
	}

	if digest != nil {
		h.sourceDigest = hexDigest(digest)
	}
	return nil
}

// waitQuota blocks until the limiter releases n bytes. Requests are sliced
// to the limiter burst so a limit below the chunk size throttles the
// transfer instead of failing it.
func (h *Handler) waitQuota(ctx context.Context, n int) error {
	burst := h.limiter.Burst()
	if burst <= 0 {
		return fmt.Errorf("non-positive limiter burst %d", burst)
	}
	for n > 0 {
		take := min(n, burst)
		if err := h.limiter.WaitN(ctx, take); err != nil {
			return err
		}
		n -= take
	}
	return nil
}

// verifyTarget re-reads the just-written target from the start and compares
// its streaming digest against the one accumulated during transfer.
func (h *Handler) verifyTarget(ctx context.Context) error {
	digest, err := NewDigest(h.digest)
	if err != nil {
		return err
	}

	target := platform.NewAccessHandle(h.entry.Target)
	if err := target.OpenRead(); err != nil {
		return err
	}
	defer h.release(target)

	buf := make([]byte, verifyBufferSize)
	for {
		if ctx.Err() != nil {
			h.outcome.Canceled = true
			return nil
		}
		n, err := target.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		digest.Write(buf[:n])
	}

	targetDigest := hexDigest(digest)
	if targetDigest != h.sourceDigest {
		h.stats.AddVerifyFailed(1)
		return &IntegrityError{
			Path:         h.entry.Target,
			SourceDigest: h.sourceDigest,
			TargetDigest: targetDigest,
		}
	}
	h.stats.AddEntriesVerified(1)
	return nil
}

// finalize stamps source attributes and timestamps onto the target.
func (h *Handler) finalize() error {
	if err := platform.CloneAttributes(h.entry.Source, h.entry.Target); err != nil {
		return fmt.Errorf("propagate attributes: %w", err)
	}
	return nil
}

// cleanup always runs. On success with Move the source is deleted; on abort
// a created target is discarded so no half-written file is left behind.
// Cleanup failures are logged and swallowed and never escalate an existing
// error or cancel state.
func (h *Handler) cleanup() {
	if !h.outcome.Aborted() {
		if !h.entry.Move {
			return
		}
		if err := platform.MakeWritable(h.entry.Source); err != nil {
			h.log.Warn("reset source attributes failed",
				zap.Int("code", osErrorCode(err)), zap.Error(err))
		}
		if err := os.Remove(h.entry.Source); err != nil {
			h.log.Warn("remove source failed",
				zap.Int("code", osErrorCode(err)), zap.Error(err))
			return
		}
		h.stats.AddSourcesRemoved(1)
		return
	}

	if !h.targetCreated {
		return
	}
	if _, err := os.Lstat(h.entry.Target); err != nil {
		return
	}
	if err := os.Remove(h.entry.Target); err != nil {
		h.log.Warn("discard partial target failed",
			zap.Int("code", osErrorCode(err)), zap.Error(err))
		return
	}
	h.stats.AddTargetsDiscarded(1)
}

// release closes an access handle; release failures must not abort caller
// unwind, they are logged only.
func (h *Handler) release(ah *platform.AccessHandle) {
	if err := ah.Close(); err != nil {
		h.log.Warn("handle release failed",
			zap.String("path", ah.Path()),
			zap.Int("code", osErrorCode(err)),
			zap.Error(err))
	}
}
