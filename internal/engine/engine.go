// Package engine implements the copy-and-verify core: playlist construction,
// per-entry execution and the bounded-parallel wave scheduler.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/akesseler/QuickCopy/internal/stats"
)

// Config describes a copy run.
type Config struct {
	Request Request
	// Workers is the wave size; <= 0 means the processor count.
	Workers int
	// Digest selects the verification algorithm; empty means blake3.
	Digest DigestAlgorithm
	// BWLimit caps aggregate throughput in bytes/sec; 0 means unlimited.
	BWLimit int64
	Log     *zap.Logger
	Stats   *stats.Collector
}

// Result is the aggregate outcome of a copy run. The run always completes
// unless cut short by cancellation; individual entry failures are reflected
// in Err and the counters, never as a crash.
type Result struct {
	Attempted int
	Canceled  bool
	Stats     stats.Snapshot
	Err       error
}

// Run resolves the request into a playlist and drives it to completion,
// blocking until every dispatched entry has finished.
func Run(ctx context.Context, cfg Config) Result {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run", uuid.NewString()[:8]))

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	var limiter *rate.Limiter
	if cfg.BWLimit > 0 {
		limiter = NewBWLimiter(cfg.BWLimit)
	}

	builder := &Builder{
		Log:     log,
		Stats:   collector,
		Limiter: limiter,
		Digest:  cfg.Digest,
	}
	handlers, err := builder.Build(cfg.Request)
	if err != nil {
		return Result{Err: fmt.Errorf("build playlist: %w", err)}
	}
	collector.AddEntriesPlanned(int64(len(handlers)))

	log.Debug("playlist built",
		zap.Int("entries", len(handlers)),
		zap.Int("workers", cfg.Workers))

	scheduler := &Scheduler{Workers: cfg.Workers, Log: log}
	sum := scheduler.Run(ctx, handlers)

	result := Result{
		Attempted: sum.Attempted,
		Canceled:  sum.Canceled,
		Stats:     collector.Snapshot(),
	}
	if sum.Errored {
		result.Err = fmt.Errorf("%d of %d entries failed",
			result.Stats.EntriesFailed, sum.Attempted)
	}
	return result
}
