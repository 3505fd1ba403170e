// Package dispatch routes extracted assets to the decoder for their kind and
// writes the resulting artifacts to a sink.
//
// Decoder failures are reported in the Result and never stop a batch. Kinds
// without a registered decoder are written through unchanged.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/idcl/internal/batch"
	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/mesh"
	"github.com/meigma/idcl/texture"
)

type (
	// Asset is the decompressed content of one entry.
	Asset = restype.Asset

	// Sink receives the artifacts of dispatched assets.
	Sink = batch.Sink
)

// ErrUnimplementedFormat marks assets of a known kind that have no decoder.
var ErrUnimplementedFormat = restype.ErrUnimplementedFormat

// Status is the outcome of one entry.
type Status uint8

// Entry outcomes.
const (
	// StatusSucceeded means every artifact was decoded and written.
	StatusSucceeded Status = iota

	// StatusPassthrough means a known format without a decoder was written
	// unchanged.
	StatusPassthrough

	// StatusSkipped means nothing was written, because the entry was filtered
	// out or its artifacts already exist.
	StatusSkipped

	// StatusFailed means the entry could not be read, decompressed, or decoded.
	StatusFailed

	// StatusNotProcessed means the batch was canceled before the entry started.
	StatusNotProcessed
)

var statusNames = [...]string{"succeeded", "passthrough", "skipped", "failed", "not-processed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// ParseStatus returns the Status named s.
func ParseStatus(s string) (Status, bool) {
	for i, n := range statusNames {
		if n == s {
			return Status(i), true
		}
	}
	return StatusFailed, false
}

// Output describes one artifact written to the sink.
type Output struct {
	Path   string
	Size   uint64
	Digest digest.Digest
}

// Result is the outcome of dispatching one asset.
type Result struct {
	Kind    Kind
	Status  Status
	Outputs []Output

	// Err is the decoder or write error for StatusFailed, and wraps
	// ErrUnimplementedFormat for StatusPassthrough.
	Err error
}

// Handler decodes assets of one kind and emits their artifacts.
type Handler interface {
	Handle(ctx context.Context, asset *Asset, out *Emitter) (Status, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, asset *Asset, out *Emitter) (Status, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, asset *Asset, out *Emitter) (Status, error) {
	return f(ctx, asset, out)
}

// MeshFormat selects the file format of mesh parts.
type MeshFormat int

// Mesh output formats.
const (
	MeshOBJ MeshFormat = iota
	MeshGLB
	// MeshBoth writes an OBJ and a GLB file for every part.
	MeshBoth
)

// Ext returns the file extension for f, without the dot. MeshBoth reports
// the OBJ extension.
func (f MeshFormat) Ext() string {
	if f == MeshGLB {
		return "glb"
	}
	return "obj"
}

// formats expands f into the single formats it writes.
func (f MeshFormat) formats() []MeshFormat {
	if f == MeshBoth {
		return []MeshFormat{MeshOBJ, MeshGLB}
	}
	return []MeshFormat{f}
}

// ParseMeshFormat maps "obj", "glb", or "both" to a MeshFormat.
func ParseMeshFormat(s string) (MeshFormat, error) {
	switch s {
	case "obj", "":
		return MeshOBJ, nil
	case "glb", "gltf":
		return MeshGLB, nil
	case "both":
		return MeshBoth, nil
	}
	return MeshOBJ, fmt.Errorf("unknown mesh format %q", s)
}

// Dispatcher classifies assets and runs the handler registered for their
// kind. It is safe for concurrent use once configured.
type Dispatcher struct {
	handlers    map[Kind]Handler
	meshFormat  MeshFormat
	meshOpts    []mesh.WriteOption
	imageEnc    texture.Encoding
	allMips     bool
	keepRaw     bool
	passForeign bool
	logger      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMeshFormat sets the file format of mesh parts (default OBJ).
func WithMeshFormat(f MeshFormat) Option {
	return func(d *Dispatcher) {
		d.meshFormat = f
	}
}

// WithMeshOptions passes writer options to every mesh part.
func WithMeshOptions(opts ...mesh.WriteOption) Option {
	return func(d *Dispatcher) {
		d.meshOpts = append(d.meshOpts, opts...)
	}
}

// WithImageEncoding sets the raster format for images (default PNG).
func WithImageEncoding(e texture.Encoding) Option {
	return func(d *Dispatcher) {
		d.imageEnc = e
	}
}

// WithAllMips writes every mip level instead of only the base image.
func WithAllMips(enabled bool) Option {
	return func(d *Dispatcher) {
		d.allMips = enabled
	}
}

// WithKeepRawOnFailure writes the decompressed bytes of assets whose decoder
// fails, so the data is not lost.
func WithKeepRawOnFailure(enabled bool) Option {
	return func(d *Dispatcher) {
		d.keepRaw = enabled
	}
}

// WithPassthroughUnrecognized writes assets whose content does not carry the
// magic their decoder expects unchanged, with StatusPassthrough, instead of
// failing them. Game data often tags formats this package cannot decode with
// the same type as ones it can.
func WithPassthroughUnrecognized(enabled bool) Option {
	return func(d *Dispatcher) {
		d.passForeign = enabled
	}
}

// WithHandler registers h for kind, replacing any built-in handler.
func WithHandler(kind Kind, h Handler) Option {
	return func(d *Dispatcher) {
		d.handlers[kind] = h
	}
}

// WithLogger sets the logger for decoder failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher with the built-in mesh, image, and pass-through
// handlers.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{handlers: make(map[Kind]Handler)}
	d.handlers[KindRaw] = HandlerFunc(writeRaw)
	d.handlers[KindMesh] = HandlerFunc(d.handleMesh)
	d.handlers[KindImage] = HandlerFunc(d.handleImage)
	d.handlers[KindDecl] = HandlerFunc(writePassthrough)
	d.handlers[KindTextureDB] = HandlerFunc(writePassthrough)
	d.handlers[KindScript] = HandlerFunc(writePassthrough)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// log returns the logger, falling back to a discard logger if nil.
func (d *Dispatcher) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// Dispatch decodes asset and writes its artifacts to sink.
//
// Decoder and write failures are returned in Result with StatusFailed. The
// error return is non-nil only when ctx is done before the handler starts.
func (d *Dispatcher) Dispatch(ctx context.Context, asset *Asset, sink Sink) (Result, error) {
	kind := Classify(asset.Entry.TypeTag, asset.Entry.Name, asset.Data)
	if err := ctx.Err(); err != nil {
		return Result{Kind: kind, Status: StatusNotProcessed, Err: err}, err
	}

	h, ok := d.handlers[kind]
	if !ok {
		h = HandlerFunc(writeRaw)
	}

	out := &Emitter{sink: sink}
	status, err := h.Handle(ctx, asset, out)
	res := Result{Kind: kind, Status: status}
	switch {
	case err != nil && d.passForeign && errors.Is(err, restype.ErrBadMagic) && len(out.outputs) == 0:
		d.log().Debug("content not recognized, writing unchanged", "entry", asset.Entry.Name, "kind", kind)
		res.Status = StatusPassthrough
		res.Err = fmt.Errorf("%w: %s: %w", ErrUnimplementedFormat, kind, err)
		if werr := out.Bytes(RawPath(asset.Entry.Name), asset.Data); werr != nil {
			res.Status, res.Err = StatusFailed, errors.Join(err, werr)
		}
	case err != nil:
		d.log().Warn("decode failed", "entry", asset.Entry.Name, "kind", kind, "error", err)
		res.Status, res.Err = StatusFailed, err
		if d.keepRaw {
			if werr := out.Bytes(RawPath(asset.Entry.Name), asset.Data); werr != nil {
				res.Err = errors.Join(err, werr)
			}
		}
	case len(out.outputs) == 0 && out.existing > 0:
		res.Status = StatusSkipped
	case status == StatusPassthrough:
		res.Err = fmt.Errorf("%w: %s", ErrUnimplementedFormat, kind)
	}
	res.Outputs = out.outputs
	return res, nil
}

// Emitter writes the artifacts of one asset and records them.
type Emitter struct {
	sink     Sink
	outputs  []Output
	existing int
}

// NewEmitter returns an Emitter writing to sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// Outputs returns the artifacts written so far.
func (e *Emitter) Outputs() []Output {
	return e.outputs
}

// Write writes one artifact at path using fn. Paths the sink declines are
// counted as existing and not written.
func (e *Emitter) Write(path string, fn func(io.Writer) error) error {
	if !e.sink.ShouldWrite(path) {
		e.existing++
		return nil
	}
	w, err := e.sink.Writer(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	digester := digest.Canonical.Digester()
	cw := &countingWriter{w: io.MultiWriter(w, digester.Hash())}
	if err := fn(cw); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", path, err)
	}
	e.outputs = append(e.outputs, Output{Path: path, Size: cw.n, Digest: digester.Digest()})
	return nil
}

// Bytes writes b as one artifact at path.
func (e *Emitter) Bytes(path string, b []byte) error {
	return e.Write(path, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n) //nolint:gosec // n is non-negative per io.Writer
	return n, err
}
