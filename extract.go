package idcl

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/internal/batch"
)

// Sink types re-exported from internal/batch.
type (
	// Sink receives extracted artifacts by relative path.
	Sink = batch.Sink

	// Committer is a writer that can be committed or discarded.
	Committer = batch.Committer

	// FileSink writes artifacts below a directory.
	FileSink = batch.FileSink

	// MemorySink collects artifacts in memory.
	MemorySink = batch.MemorySink
)

// Sink constructors re-exported from internal/batch.
var (
	NewFileSink   = batch.NewFileSink
	NewMemorySink = batch.NewMemorySink
)

// ExtractAll extracts every entry into destDir and reports each outcome.
//
// Per-entry failures are recorded in the report and do not stop the batch.
// If ctx is canceled, entries already running finish, the rest are reported
// as not processed, and ctx's error is returned with the partial report.
func (a *Archive) ExtractAll(ctx context.Context, destDir string, opts ...ExtractOption) (*Report, error) {
	cfg := newExtractConfig(opts)
	sink := batch.NewFileSink(destDir, batch.WithOverwrite(cfg.overwrite))
	return a.extract(ctx, sink, cfg, 0, "")
}

// ExtractTo extracts every entry into sink. It behaves like ExtractAll
// except that the sink decides which existing artifacts to skip.
func (a *Archive) ExtractTo(ctx context.Context, sink Sink, opts ...ExtractOption) (*Report, error) {
	return a.extract(ctx, sink, newExtractConfig(opts), 0, "")
}

// extraction is the batch.Handler for one container level.
type extraction struct {
	archive   *Archive
	cfg       *extractConfig
	sink      Sink
	depth     int
	container string
	disp      *dispatch.Dispatcher

	// Indexed by entry index; each slot is written by one goroutine.
	results []EntryResult
	nested  [][]EntryResult
}

func (a *Archive) extract(ctx context.Context, sink Sink, cfg *extractConfig, depth int, container string) (*Report, error) {
	x := &extraction{
		archive:   a,
		cfg:       cfg,
		sink:      sink,
		depth:     depth,
		container: container,
		results:   make([]EntryResult, a.Len()),
		nested:    make([][]EntryResult, a.Len()),
	}
	for e := range a.dir.Entries() {
		x.results[e.Index] = EntryResult{
			Index:     e.Index,
			Name:      e.Name,
			TypeTag:   e.TypeTag,
			Container: container,
			Kind:      dispatch.Classify(e.TypeTag, e.Name, nil),
			Status:    StatusNotProcessed,
			Size:      e.OriginalSize,
		}
	}

	dispatchOpts := append([]dispatch.Option{dispatch.WithPassthroughUnrecognized(true)}, cfg.dispatchOpts...)
	dispatchOpts = append(dispatchOpts,
		dispatch.WithKeepRawOnFailure(cfg.keepRaw),
		dispatch.WithLogger(a.logger),
		dispatch.WithHandler(dispatch.KindContainer, dispatch.HandlerFunc(x.handleContainer)),
	)
	x.disp = dispatch.New(dispatchOpts...)

	procOpts := []batch.ProcessorOption{
		batch.WithLimiter(cfg.limiter),
		batch.WithProcessorLogger(a.logger),
	}
	if depth == 0 && cfg.progress != nil {
		cfg.progress(ProgressEvent{Stage: StageOpening, Path: a.name, FilesTotal: a.Len()})
		procOpts = append(procOpts, batch.WithProgress(cfg.progress, a.Len()))
	}

	stats, err := batch.NewProcessor(a.reader, procOpts...).Process(ctx, a.dir.Entries(), x)
	report := x.report()

	if depth == 0 && cfg.progress != nil {
		cfg.progress(ProgressEvent{
			Stage:      StageDone,
			Path:       a.name,
			BytesDone:  stats.TotalBytes,
			FilesDone:  stats.Processed + stats.Failed + stats.Skipped,
			FilesTotal: a.Len(),
		})
	}
	a.log().Info("extraction finished", "archive", a.name, "depth", depth, "summary", report.Summary().String())
	return report, err
}

func (x *extraction) report() *Report {
	r := &Report{Archive: x.archive.name, Entries: make([]EntryResult, 0, len(x.results))}
	for i := range x.results {
		r.Entries = append(r.Entries, x.results[i])
		r.Entries = append(r.Entries, x.nested[i]...)
	}
	return r
}

// isGarbage reports whether an entry is a tiny extensionless file at the
// archive root. Such entries are placeholders and are skipped by default.
func isGarbage(e *Entry) bool {
	return !strings.Contains(e.Name, "/") &&
		!strings.Contains(e.Name, ".") &&
		e.OriginalSize < garbageSizeLimit
}

// ShouldProcess implements batch.Handler.
func (x *extraction) ShouldProcess(e *Entry) bool {
	skip := (x.depth == 0 && x.cfg.filter != nil && !x.cfg.filter(*e)) ||
		(!x.cfg.extractGarbage && isGarbage(e))
	if skip {
		x.results[e.Index].Status = StatusSkipped
	}
	return !skip
}

// Handle implements batch.Handler.
func (x *extraction) Handle(ctx context.Context, e *Entry, content []byte) error {
	res, err := x.disp.Dispatch(ctx, &Asset{Entry: *e, Data: content}, x.sink)
	if err != nil {
		return err
	}
	r := &x.results[e.Index]
	r.Kind = res.Kind
	r.Status = res.Status
	r.Err = res.Err
	r.Outputs = x.qualify(res.Outputs)
	return nil
}

// Fail implements batch.Handler.
func (x *extraction) Fail(e *Entry, payload []byte, err error) {
	r := &x.results[e.Index]
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.Status = StatusNotProcessed
		r.Err = err
		return
	}
	r.Status = StatusFailed
	r.Err = err
	if payload == nil || !x.cfg.keepFailed {
		return
	}
	out := dispatch.NewEmitter(x.sink)
	if werr := out.Bytes(dispatch.CompressedPath(e.Name), payload); werr != nil {
		r.Err = errors.Join(err, werr)
	}
	r.Outputs = x.qualify(out.Outputs())
}

// qualify rewrites output paths relative to the extraction root.
func (x *extraction) qualify(outputs []Output) []Output {
	if x.container == "" {
		return outputs
	}
	for i := range outputs {
		outputs[i].Path = x.container + "/" + outputs[i].Path
	}
	return outputs
}

// handleContainer extracts a nested container into a directory named after
// the entry.
func (x *extraction) handleContainer(ctx context.Context, asset *Asset, out *dispatch.Emitter) (Status, error) {
	name := asset.Entry.Name
	if x.depth >= x.cfg.maxDepth {
		x.archive.log().Warn("nested container past depth limit, writing unchanged",
			"entry", name, "depth", x.depth)
		if err := out.Bytes(dispatch.RawPath(name), asset.Data); err != nil {
			return StatusFailed, err
		}
		return StatusPassthrough, nil
	}

	opts := append(append([]Option{}, x.archive.opts...), WithName(name))
	nested, err := OpenBytes(name, asset.Data, opts...)
	if err != nil {
		return StatusFailed, err
	}

	containerPath := name
	if x.container != "" {
		containerPath = path.Join(x.container, name)
	}
	sub := &prefixSink{sink: x.sink, prefix: name + "/"}
	// The nested entries run on the same limiter; hand this entry's share
	// back so they can use it.
	batch.Yield(ctx)
	report, err := nested.extract(ctx, sub, x.cfg, x.depth+1, containerPath)
	x.nested[asset.Entry.Index] = report.Entries
	if err != nil {
		// Only cancellation ends a nested batch early; its entries are
		// already reported as not processed.
		x.archive.log().Debug("nested extraction stopped", "entry", name, "error", err)
	}
	return StatusSucceeded, nil
}

// prefixSink places every artifact below a fixed directory of another sink.
type prefixSink struct {
	sink   Sink
	prefix string
}

func (s *prefixSink) ShouldWrite(p string) bool {
	return s.sink.ShouldWrite(s.prefix + p)
}

func (s *prefixSink) Writer(p string) (Committer, error) {
	return s.sink.Writer(s.prefix + p)
}
