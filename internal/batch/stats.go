package batch

import "sync/atomic"

// ProcessStats contains statistics from a batch processing operation.
type ProcessStats struct {
	// Processed is the number of entries whose handler returned nil.
	Processed int

	// Skipped is the number of entries rejected by ShouldProcess.
	Skipped int

	// Failed is the number of entries that could not be read, decoded,
	// or handled.
	Failed int

	// NotProcessed is the number of entries never started because the
	// context was canceled.
	NotProcessed int

	// TotalBytes is the sum of OriginalSize for all processed entries.
	TotalBytes uint64
}

// counters is the concurrent form of ProcessStats.
type counters struct {
	processed    atomic.Int64
	skipped      atomic.Int64
	failed       atomic.Int64
	notProcessed atomic.Int64
	bytes        atomic.Uint64
}

func (c *counters) snapshot() ProcessStats {
	return ProcessStats{
		Processed:    int(c.processed.Load()),
		Skipped:      int(c.skipped.Load()),
		Failed:       int(c.failed.Load()),
		NotProcessed: int(c.notProcessed.Load()),
		TotalBytes:   c.bytes.Load(),
	}
}

func (c *counters) done() int {
	return int(c.processed.Load() + c.failed.Load() + c.skipped.Load())
}
