package engine

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Scheduler drains a playlist in waves sized to the available parallelism.
// All entries of a wave execute concurrently; the next wave starts only when
// the previous one has fully completed. This bounds peak concurrent handle
// usage to the wave size, not the playlist size.
type Scheduler struct {
	// Workers is the wave size; <= 0 means runtime.NumCPU().
	Workers int
	Log     *zap.Logger
}

// RunSummary aggregates scheduler-level results across all waves.
type RunSummary struct {
	Attempted int
	Errored   bool
	Canceled  bool
}

// Run executes the handlers wave by wave. Cancellation stops dispatching new
// waves; entries already in flight finish their own cooperative shutdown.
// Individual entry errors never stop the run.
func (s *Scheduler) Run(ctx context.Context, handlers []*Handler) RunSummary {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	wave := s.Workers
	if wave <= 0 {
		wave = runtime.NumCPU()
	}

	var sum RunSummary
	for start := 0; start < len(handlers); start += wave {
		if ctx.Err() != nil {
			sum.Canceled = true
			log.Info("cancellation observed, no further waves",
				zap.Int("dispatched", sum.Attempted),
				zap.Int("pending", len(handlers)-sum.Attempted))
			break
		}

		end := min(start+wave, len(handlers))
		batch := handlers[start:end]

		var wg sync.WaitGroup
		for _, h := range batch {
			wg.Add(1)
			go func(h *Handler) {
				defer wg.Done()
				h.Execute(ctx)
			}(h)
		}
		wg.Wait()

		sum.Attempted += len(batch)
		for _, h := range batch {
			o := h.Outcome()
			if o.Err != nil {
				sum.Errored = true
			}
			if o.Canceled {
				sum.Canceled = true
			}
		}
	}
	return sum
}
