package batch

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the entries being processed and the decompressed bytes they
// hold. Processors sharing a Limiter share both bounds, so a batch started
// from inside a handler stays within the limits of the batch that started it.
type Limiter struct {
	slots    *semaphore.Weighted
	bytes    *semaphore.Weighted
	workers  int
	maxBytes int64
}

// NewLimiter creates a Limiter for workers concurrent entries holding at most
// maxInflight decompressed bytes. workers < 1 uses GOMAXPROCS and
// maxInflight <= 0 disables the byte budget.
func NewLimiter(workers int, maxInflight int64) *Limiter {
	if workers < 1 {
		workers = max(1, runtime.GOMAXPROCS(0))
	}
	l := &Limiter{
		slots:   semaphore.NewWeighted(int64(workers)),
		workers: workers,
	}
	if maxInflight > 0 {
		l.bytes = semaphore.NewWeighted(maxInflight)
		l.maxBytes = maxInflight
	}
	return l
}

// Workers returns the number of entries that may run at once.
func (l *Limiter) Workers() int {
	return l.workers
}

// MaxInflightBytes returns the byte budget, or zero if there is none.
func (l *Limiter) MaxInflightBytes() int64 {
	return l.maxBytes
}

// acquire blocks until a worker slot and size bytes of budget are free.
// Sizes above the budget are clamped, so such an entry runs alone.
func (l *Limiter) acquire(ctx context.Context, size uint64) (*lease, error) {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	ls := &lease{limiter: l}
	if l.bytes != nil {
		ls.weight = int64(min(size, uint64(l.maxBytes))) //nolint:gosec // bounded by maxBytes
		if err := l.bytes.Acquire(ctx, ls.weight); err != nil {
			l.slots.Release(1)
			return nil, err
		}
	}
	return ls, nil
}

// lease is the share of a Limiter held by one running entry.
type lease struct {
	once    sync.Once
	limiter *Limiter
	weight  int64
}

func (ls *lease) release() {
	ls.once.Do(func() {
		if ls.weight > 0 {
			ls.limiter.bytes.Release(ls.weight)
		}
		ls.limiter.slots.Release(1)
	})
}

type leaseKey struct{}

// Yield gives back the worker slot and byte budget held by the entry handled
// under ctx. A handler calls it before waiting on a batch that runs through
// the same Limiter; otherwise that batch may wait forever for the slot its
// caller holds. Yield is a no-op for contexts not passed to Handle.
func Yield(ctx context.Context) {
	if ls, ok := ctx.Value(leaseKey{}).(*lease); ok {
		ls.release()
	}
}
