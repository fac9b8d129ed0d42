// Package stats tracks run counters with lock-free atomics. One Collector is
// shared by every entry handler of a run.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates the outcome of a copy run.
type Collector struct {
	entriesPlanned   atomic.Int64
	entriesCopied    atomic.Int64
	entriesFailed    atomic.Int64
	entriesCanceled  atomic.Int64
	entriesVerified  atomic.Int64
	verifyFailed     atomic.Int64
	bytesCopied      atomic.Int64
	sourcesRemoved   atomic.Int64
	targetsDiscarded atomic.Int64
	startTime        time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddEntriesPlanned(n int64)   { c.entriesPlanned.Add(n) }
func (c *Collector) AddEntriesCopied(n int64)    { c.entriesCopied.Add(n) }
func (c *Collector) AddEntriesFailed(n int64)    { c.entriesFailed.Add(n) }
func (c *Collector) AddEntriesCanceled(n int64)  { c.entriesCanceled.Add(n) }
func (c *Collector) AddEntriesVerified(n int64)  { c.entriesVerified.Add(n) }
func (c *Collector) AddVerifyFailed(n int64)     { c.verifyFailed.Add(n) }
func (c *Collector) AddBytesCopied(n int64)      { c.bytesCopied.Add(n) }
func (c *Collector) AddSourcesRemoved(n int64)   { c.sourcesRemoved.Add(n) }
func (c *Collector) AddTargetsDiscarded(n int64) { c.targetsDiscarded.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesPlanned   int64
	EntriesCopied    int64
	EntriesFailed    int64
	EntriesCanceled  int64
	EntriesVerified  int64
	VerifyFailed     int64
	BytesCopied      int64
	SourcesRemoved   int64
	TargetsDiscarded int64
	Elapsed          time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		EntriesPlanned:   c.entriesPlanned.Load(),
		EntriesCopied:    c.entriesCopied.Load(),
		EntriesFailed:    c.entriesFailed.Load(),
		EntriesCanceled:  c.entriesCanceled.Load(),
		EntriesVerified:  c.entriesVerified.Load(),
		VerifyFailed:     c.verifyFailed.Load(),
		BytesCopied:      c.bytesCopied.Load(),
		SourcesRemoved:   c.sourcesRemoved.Load(),
		TargetsDiscarded: c.targetsDiscarded.Load(),
		Elapsed:          c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"planned=%d copied=%d failed=%d canceled=%d verified=%d bytes=%s elapsed=%s",
		s.EntriesPlanned, s.EntriesCopied, s.EntriesFailed, s.EntriesCanceled,
		s.EntriesVerified, FormatBytes(s.BytesCopied), s.Elapsed.Round(time.Millisecond),
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
