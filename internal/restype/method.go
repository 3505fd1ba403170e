package restype

// Method identifies how an entry's payload is stored in the archive.
type Method uint8

const (
	// MethodStored means the payload is the entry content, byte for byte.
	MethodStored Method = iota
	// MethodOodleLike means the payload is a chunked LZ stream.
	MethodOodleLike
)

// String returns the human-readable name of the method.
func (m Method) String() string {
	switch m {
	case MethodStored:
		return "stored"
	case MethodOodleLike:
		return "oodle"
	default:
		return "unknown"
	}
}
