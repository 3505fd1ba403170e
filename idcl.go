package idcl

import (
	"io"

	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/internal/restype"
)

// Re-export types from internal/restype for public API.
type (
	// Entry describes one resource in a container.
	Entry = restype.Entry

	// Asset is the decompressed content of one entry.
	Asset = restype.Asset

	// Method identifies how an entry's payload is stored.
	Method = restype.Method

	// ProgressEvent represents a progress update during extraction.
	ProgressEvent = restype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = restype.ProgressStage

	// ProgressFunc receives progress updates during extraction.
	ProgressFunc = restype.ProgressFunc

	// Kind is the decoder family an entry is routed to.
	Kind = dispatch.Kind

	// Status is the outcome of one extracted entry.
	Status = dispatch.Status

	// Output describes one artifact written during extraction.
	Output = dispatch.Output
)

// Re-export storage methods.
const (
	MethodStored    = restype.MethodStored
	MethodOodleLike = restype.MethodOodleLike
)

// Re-export progress stage constants.
const (
	StageOpening    = restype.StageOpening
	StageExtracting = restype.StageExtracting
	StageDone       = restype.StageDone
)

// Re-export entry outcomes.
const (
	StatusSucceeded    = dispatch.StatusSucceeded
	StatusPassthrough  = dispatch.StatusPassthrough
	StatusSkipped      = dispatch.StatusSkipped
	StatusFailed       = dispatch.StatusFailed
	StatusNotProcessed = dispatch.StatusNotProcessed
)

// Sentinel errors re-exported from internal/restype.
var (
	// ErrBadMagic is returned when data does not start with the expected magic.
	ErrBadMagic = restype.ErrBadMagic

	// ErrUnsupportedVersion is returned for container versions outside 10..13.
	ErrUnsupportedVersion = restype.ErrUnsupportedVersion

	// ErrTruncatedArchive is returned when any structure or payload extends
	// past the end of the archive.
	ErrTruncatedArchive = restype.ErrTruncatedArchive

	// ErrSizeMismatch is returned when a stored entry's length differs from
	// its declared size.
	ErrSizeMismatch = restype.ErrSizeMismatch

	// ErrCorruptStream is returned when a compressed payload cannot be decoded.
	ErrCorruptStream = restype.ErrCorruptStream

	// ErrCorruptMesh is returned when model data is structurally invalid.
	ErrCorruptMesh = restype.ErrCorruptMesh

	// ErrIndexOutOfRange is returned when a triangle references a missing vertex.
	ErrIndexOutOfRange = restype.ErrIndexOutOfRange

	// ErrUnsupportedPixelFormat is returned for unknown image pixel formats.
	ErrUnsupportedPixelFormat = restype.ErrUnsupportedPixelFormat

	// ErrCorruptImage is returned when image dimensions or levels are invalid.
	ErrCorruptImage = restype.ErrCorruptImage

	// ErrUnimplementedFormat marks passthrough entries of a known kind.
	ErrUnimplementedFormat = restype.ErrUnimplementedFormat

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = restype.ErrSizeOverflow
)

// ByteSource provides random access to archive bytes.
//
// Implementations exist for local files, byte slices, and HTTP range
// requests. SourceID must return a stable identifier for the content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}
