package restype

import "errors"

// Sentinel errors for archive and asset operations.
var (
	// ErrBadMagic is returned when a header does not start with the expected magic.
	ErrBadMagic = errors.New("idcl: bad magic")

	// ErrUnsupportedVersion is returned for header versions outside the supported range.
	ErrUnsupportedVersion = errors.New("idcl: unsupported version")

	// ErrTruncatedArchive is returned when a header, directory, or entry extends
	// past the end of the archive.
	ErrTruncatedArchive = errors.New("idcl: truncated archive")

	// ErrSizeMismatch is returned when a stored entry's length differs from its
	// declared size.
	ErrSizeMismatch = errors.New("idcl: size mismatch")

	// ErrCorruptStream is returned when a compressed stream cannot be decoded
	// to exactly the declared size.
	ErrCorruptStream = errors.New("idcl: corrupt stream")

	// ErrCorruptMesh is returned when mesh data is structurally invalid.
	ErrCorruptMesh = errors.New("idcl: corrupt mesh")

	// ErrIndexOutOfRange is returned when a triangle references a missing vertex.
	ErrIndexOutOfRange = errors.New("idcl: index out of range")

	// ErrUnsupportedPixelFormat is returned for unknown image pixel formats.
	ErrUnsupportedPixelFormat = errors.New("idcl: unsupported pixel format")

	// ErrCorruptImage is returned when image dimensions or level sizes are invalid.
	ErrCorruptImage = errors.New("idcl: corrupt image")

	// ErrUnimplementedFormat marks an asset whose type has no decoder.
	// It is informational; such assets are written through unchanged.
	ErrUnimplementedFormat = errors.New("idcl: unimplemented format")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("idcl: size overflow")
)
