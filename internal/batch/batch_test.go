package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl/internal/directory"
	"github.com/meigma/idcl/internal/file"
	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/internal/testutil"
)

// recordingHandler captures handled and failed entries for testing.
type recordingHandler struct {
	mu            sync.Mutex
	shouldProcess func(*Entry) bool
	handle        func(*Entry, []byte) error
	handled       map[string][]byte
	failed        map[string]error
	payloads      map[string][]byte
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		handled:  make(map[string][]byte),
		failed:   make(map[string]error),
		payloads: make(map[string][]byte),
	}
}

func (h *recordingHandler) ShouldProcess(entry *Entry) bool {
	if h.shouldProcess == nil {
		return true
	}
	return h.shouldProcess(entry)
}

func (h *recordingHandler) Handle(_ context.Context, entry *Entry, content []byte) error {
	if h.handle != nil {
		if err := h.handle(entry, content); err != nil {
			return err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled[entry.Name] = content
	return nil
}

func (h *recordingHandler) Fail(entry *Entry, payload []byte, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed[entry.Name] = err
	if payload != nil {
		h.payloads[entry.Name] = payload
	}
}

// nestingHandler runs another batch from inside Handle.
type nestingHandler struct {
	*recordingHandler
	run func(ctx context.Context) error
}

func (h *nestingHandler) Handle(ctx context.Context, entry *Entry, content []byte) error {
	Yield(ctx)
	if err := h.run(ctx); err != nil {
		return err
	}
	return h.recordingHandler.Handle(ctx, entry, content)
}

func openArchive(t *testing.T, a testutil.Archive) (*directory.Directory, *file.Reader) {
	t.Helper()
	src := testutil.NewMockByteSource(a.Bytes())
	dir, err := directory.Read(src, src.Size())
	require.NoError(t, err)
	return dir, file.NewReader(src)
}

func sampleArchive(n int) testutil.Archive {
	var a testutil.Archive
	for i := range n {
		a.Entries = append(a.Entries, testutil.ArchiveEntry{
			Name:       fmt.Sprintf("data/file%02d.bin", i),
			Data:       testutil.CompressibleBytes(500 + i*37),
			Compressed: i%2 == 1,
		})
	}
	return a
}

func TestProcessAllEntries(t *testing.T) {
	t.Parallel()

	archive := sampleArchive(12)
	dir, reader := openArchive(t, archive)

	var events atomic.Int64
	p := NewProcessor(reader,
		WithWorkers(4),
		WithProgress(func(ev restype.ProgressEvent) {
			assert.Equal(t, restype.StageExtracting, ev.Stage)
			assert.Equal(t, 12, ev.FilesTotal)
			events.Add(1)
		}, dir.Len()),
	)
	h := newRecordingHandler()

	stats, err := p.Process(context.Background(), dir.Entries(), h)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Processed)
	assert.Zero(t, stats.Failed)
	assert.EqualValues(t, 12, events.Load())
	assert.Empty(t, h.failed)

	var total uint64
	for i, e := range archive.Entries {
		got, ok := h.handled[fmt.Sprintf("data/file%02d.bin", i)]
		require.True(t, ok, e.Name)
		assert.True(t, bytes.Equal(e.Data, got), e.Name)
		total += uint64(len(e.Data))
	}
	assert.Equal(t, total, stats.TotalBytes)
}

func TestProcessIsolatesFailures(t *testing.T) {
	t.Parallel()

	archive := sampleArchive(3)
	archive.Entries = append(archive.Entries,
		testutil.ArchiveEntry{
			Name:       "broken/stream.bin",
			Data:       make([]byte, 400),
			Compressed: true,
			Payload:    []byte{9, 0, 0, 0, 1, 2, 3},
		},
		testutil.ArchiveEntry{Name: "handler/rejects.bin", Data: []byte("reject me")},
	)
	dir, reader := openArchive(t, archive)

	errHandler := errors.New("handler refused")
	h := newRecordingHandler()
	h.handle = func(e *Entry, _ []byte) error {
		if e.Name == "handler/rejects.bin" {
			return errHandler
		}
		return nil
	}

	stats, err := NewProcessor(reader, WithWorkers(2)).Process(context.Background(), dir.Entries(), h)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 2, stats.Failed)

	assert.ErrorIs(t, h.failed["broken/stream.bin"], restype.ErrCorruptStream)
	assert.Equal(t, []byte{9, 0, 0, 0, 1, 2, 3}, h.payloads["broken/stream.bin"])
	assert.ErrorIs(t, h.failed["handler/rejects.bin"], errHandler)
	assert.NotContains(t, h.payloads, "handler/rejects.bin")
	assert.Len(t, h.handled, 3)
}

func TestProcessSkipsFilteredEntries(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(6))
	h := newRecordingHandler()
	h.shouldProcess = func(e *Entry) bool { return e.Index%3 == 0 }

	stats, err := NewProcessor(reader).Process(context.Background(), dir.Entries(), h)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 4, stats.Skipped)
	assert.Len(t, h.handled, 2)
}

func TestProcessCanceledContext(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newRecordingHandler()
	stats, err := NewProcessor(reader).Process(ctx, dir.Entries(), h)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, stats.NotProcessed)
	assert.Zero(t, stats.Processed)
	assert.Empty(t, h.handled)
	for _, err := range h.failed {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Len(t, h.failed, 5)
}

func TestProcessCancelMidway(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newRecordingHandler()
	h.handle = func(e *Entry, _ []byte) error {
		if e.Index == 2 {
			cancel()
		}
		return nil
	}

	// A single worker makes the cut-off point deterministic.
	stats, err := NewProcessor(reader, WithWorkers(1)).Process(ctx, dir.Entries(), h)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, stats.Processed+stats.Failed)
	assert.Equal(t, 10, stats.Processed+stats.Failed+stats.NotProcessed)
}

func TestProcessWithInflightBudget(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(8))

	var inflight, peak atomic.Int64
	h := newRecordingHandler()
	h.handle = func(e *Entry, _ []byte) error {
		n := inflight.Add(int64(e.OriginalSize))
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inflight.Add(-int64(e.OriginalSize))
		return nil
	}

	const budget = 1200
	stats, err := NewProcessor(reader, WithWorkers(8), WithMaxInflightBytes(budget)).
		Process(context.Background(), dir.Entries(), h)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Processed)
	assert.LessOrEqual(t, peak.Load(), int64(budget))
}

func TestProcessEntryLargerThanBudget(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(3))
	h := newRecordingHandler()
	stats, err := NewProcessor(reader, WithMaxInflightBytes(10)).Process(context.Background(), dir.Entries(), h)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
}

func TestProcessCancelInsideHandler(t *testing.T) {
	t.Parallel()

	dir, reader := openArchive(t, sampleArchive(5))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newRecordingHandler()
	h.handle = func(*Entry, []byte) error {
		cancel()
		return context.Canceled
	}

	stats, err := NewProcessor(reader, WithWorkers(1)).Process(ctx, dir.Entries(), h)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Failed)
	assert.Zero(t, stats.Processed)
	assert.Equal(t, 5, stats.NotProcessed)
	require.Len(t, h.failed, 5)
	for _, err := range h.failed {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestProcessSharedLimiter(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 2} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			outerDir, outerReader := openArchive(t, sampleArchive(3))
			innerDir, innerReader := openArchive(t, sampleArchive(6))

			var running, peak atomic.Int64
			inner := newRecordingHandler()
			inner.handle = func(*Entry, []byte) error {
				n := running.Add(1)
				defer running.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				return nil
			}

			limits := NewLimiter(workers, 2048)
			var innerProcessed atomic.Int64
			outer := &nestingHandler{
				recordingHandler: newRecordingHandler(),
				run: func(ctx context.Context) error {
					stats, err := NewProcessor(innerReader, WithLimiter(limits)).Process(ctx, innerDir.Entries(), inner)
					innerProcessed.Add(int64(stats.Processed))
					return err
				},
			}

			stats, err := NewProcessor(outerReader, WithLimiter(limits)).Process(context.Background(), outerDir.Entries(), outer)
			require.NoError(t, err)
			assert.Equal(t, 3, stats.Processed)
			assert.EqualValues(t, 18, innerProcessed.Load())
			assert.LessOrEqual(t, peak.Load(), int64(workers))
		})
	}
}

func TestYieldOutsideHandler(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { Yield(context.Background()) })

	l := NewLimiter(0, 0)
	assert.GreaterOrEqual(t, l.Workers(), 1)
	assert.Zero(t, l.MaxInflightBytes())
}
