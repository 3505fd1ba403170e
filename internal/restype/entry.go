// Package restype holds the types and sentinel errors shared by the archive
// reader, the decoders, and the batch pipeline.
package restype

// Entry describes one resource in a container directory.
type Entry struct {
	// Index is the entry's position in directory order.
	Index int

	// Name is the normalized relative path (forward slashes, unsafe
	// characters replaced). Never empty.
	Name string

	// RawName is the name string as stored in the archive. May be empty.
	RawName string

	// TypeTag is the resource type string from the archive (e.g. "image").
	TypeTag string

	// ID is the xxhash64 of the raw name, or of Name when the raw name is empty.
	ID uint64

	// DataOffset is the absolute byte offset of the payload in the archive.
	DataOffset uint64

	// DataSize is the payload size in bytes as stored.
	DataSize uint64

	// OriginalSize is the decompressed size in bytes.
	OriginalSize uint64

	// Flags are the raw directory flags.
	Flags uint64

	// Method is the payload encoding.
	Method Method
}

// Asset is the decompressed content of one entry.
type Asset struct {
	Entry Entry
	Data  []byte
}
