// Package batch extracts many entries concurrently with bounded parallelism
// and memory.
package batch

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/idcl/internal/file"
	"github.com/meigma/idcl/internal/restype"
)

// Handler consumes entries as the Processor extracts them.
//
// Methods are called from many goroutines at once and must be safe for
// concurrent use.
type Handler interface {
	// ShouldProcess returns false if the entry should not be read at all.
	ShouldProcess(entry *Entry) bool

	// Handle receives the decompressed content of one entry. The content is
	// owned by the handler. An error marks the entry failed; it never stops
	// the batch.
	Handle(ctx context.Context, entry *Entry, content []byte) error

	// Fail reports an entry that could not be completed. payload holds the
	// stored bytes when the read succeeded but decompression failed, and is
	// nil otherwise. Entries skipped because the context ended are reported
	// with the context's error.
	Fail(entry *Entry, payload []byte, err error)
}

// Processor reads, decompresses, and hands off entries using a worker pool.
type Processor struct {
	reader      *file.Reader
	workers     int
	maxInflight int64
	limiter     *Limiter
	progress    restype.ProgressFunc
	total       int
	logger      *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of entries processed concurrently.
// Values < 1 use GOMAXPROCS.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithMaxInflightBytes caps the decompressed bytes held by running workers.
// An entry larger than the cap runs alone. Zero disables the budget.
func WithMaxInflightBytes(limit int64) ProcessorOption {
	return func(p *Processor) {
		p.maxInflight = limit
	}
}

// WithLimiter shares l's worker and byte bounds with other processors.
// It overrides WithWorkers and WithMaxInflightBytes.
func WithLimiter(l *Limiter) ProcessorOption {
	return func(p *Processor) {
		p.limiter = l
	}
}

// WithProgress reports an event after every finished entry. total is copied
// into FilesTotal.
func WithProgress(fn restype.ProgressFunc, total int) ProcessorOption {
	return func(p *Processor) {
		p.progress = fn
		p.total = total
	}
}

// WithProcessorLogger sets the logger for batch processing operations.
// If not set, logging is disabled.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a new batch processor reading through reader.
func NewProcessor(reader *file.Reader, opts ...ProcessorOption) *Processor {
	p := &Processor{reader: reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) limits() *Limiter {
	if p.limiter != nil {
		return p.limiter
	}
	return NewLimiter(p.workers, p.maxInflight)
}

// Process extracts every entry of the sequence and passes it to h.
//
// Per-entry failures are reported through h.Fail and counted; they never
// stop the batch. The context is checked before each entry is started:
// once it is done, entries already running finish, every remaining entry
// is reported as not processed, and Process returns the context's error
// together with the statistics gathered so far.
func (p *Processor) Process(ctx context.Context, entries iter.Seq[*Entry], h Handler) (ProcessStats, error) {
	var stats counters
	limits := p.limits()
	p.log().Debug("batch processing", "workers", limits.Workers(), "max_inflight", limits.MaxInflightBytes())

	// Concurrency is bounded by the limiter, not the group.
	var g errgroup.Group

	var stopErr error
	for entry := range entries {
		if stopErr == nil {
			stopErr = ctx.Err()
		}
		if stopErr != nil {
			stats.notProcessed.Add(1)
			h.Fail(entry, nil, stopErr)
			continue
		}
		if !h.ShouldProcess(entry) {
			stats.skipped.Add(1)
			p.report(entry, &stats)
			continue
		}

		ls, err := limits.acquire(ctx, entry.OriginalSize)
		if err != nil {
			stopErr = err
			stats.notProcessed.Add(1)
			h.Fail(entry, nil, err)
			continue
		}

		g.Go(func() error {
			defer ls.release()
			// The slot may have been granted after cancellation.
			if err := ctx.Err(); err != nil {
				stats.notProcessed.Add(1)
				h.Fail(entry, nil, err)
				return nil
			}
			p.processEntry(context.WithValue(ctx, leaseKey{}, ls), entry, h, &stats)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	if stopErr == nil && stats.notProcessed.Load() > 0 {
		stopErr = ctx.Err()
	}
	return stats.snapshot(), stopErr
}

// processEntry reads, decodes, and handles a single entry.
func (p *Processor) processEntry(ctx context.Context, entry *Entry, h Handler, stats *counters) {
	defer p.report(entry, stats)

	payload, err := p.reader.ReadRaw(entry)
	if err != nil {
		p.fail(entry, nil, err, h, stats)
		return
	}
	content, err := p.reader.Decode(entry, payload)
	if err != nil {
		p.fail(entry, payload, err, h, stats)
		return
	}
	if err := h.Handle(ctx, entry, content); err != nil {
		if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
			// The handler stopped because the context ended.
			stats.notProcessed.Add(1)
			h.Fail(entry, nil, err)
			return
		}
		p.fail(entry, nil, err, h, stats)
		return
	}
	stats.processed.Add(1)
	stats.bytes.Add(entry.OriginalSize)
}

func (p *Processor) fail(entry *Entry, payload []byte, err error, h Handler, stats *counters) {
	p.log().Warn("entry failed", "entry", entry.Name, "index", entry.Index, "error", err)
	stats.failed.Add(1)
	h.Fail(entry, payload, err)
}

func (p *Processor) report(entry *Entry, stats *counters) {
	if p.progress == nil {
		return
	}
	p.progress(restype.ProgressEvent{
		Stage:      restype.StageExtracting,
		Path:       entry.Name,
		BytesDone:  stats.bytes.Load(),
		FilesDone:  stats.done(),
		FilesTotal: p.total,
	})
}
