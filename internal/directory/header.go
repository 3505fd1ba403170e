package directory

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/idcl/internal/restype"
)

// Container layout constants.
const (
	// Magic is the four-byte signature at the start of every container.
	Magic = "IDCL"

	// HeaderSize is the size of the fixed container header.
	HeaderSize = 120

	// RecordSize is the size of one directory record.
	RecordSize = 144

	// MinVersion and MaxVersion bound the supported container versions.
	MinVersion = 10
	MaxVersion = 13
)

// Header holds the fixed-position fields of a container header.
type Header struct {
	Version        uint32
	FileCount      uint32
	ReservedCount  uint32
	PrefixCount    uint32
	SecondaryCount uint32
	NamesOffset    uint64
	InfoOffset     uint64
	IDsOffset      uint64
	DataOffset     uint64
}

// ParseHeader decodes and validates a container header.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < len(Magic) {
		return Header{}, fmt.Errorf("%w: %d bytes is too short for a header", restype.ErrTruncatedArchive, len(b))
	}
	if string(b[:len(Magic)]) != Magic {
		return Header{}, fmt.Errorf("%w: %q", restype.ErrBadMagic, b[:len(Magic)])
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", restype.ErrTruncatedArchive, HeaderSize, len(b))
	}

	le := binary.LittleEndian
	h := Header{
		Version:        le.Uint32(b[4:]),
		FileCount:      le.Uint32(b[40:]),
		ReservedCount:  le.Uint32(b[44:]),
		PrefixCount:    le.Uint32(b[48:]),
		SecondaryCount: le.Uint32(b[52:]),
		NamesOffset:    le.Uint64(b[72:]),
		InfoOffset:     le.Uint64(b[88:]),
		IDsOffset:      le.Uint64(b[104:]),
		DataOffset:     le.Uint64(b[112:]),
	}
	if h.Version < MinVersion || h.Version > MaxVersion {
		return Header{}, fmt.Errorf("%w: %d (supported %d..%d)", restype.ErrUnsupportedVersion, h.Version, MinVersion, MaxVersion)
	}
	return h, nil
}

// idsBase returns the offset of the first id-table slot.
func (h Header) idsBase() (uint64, bool) {
	return addMul(h.IDsOffset, uint64(h.PrefixCount), 4)
}
