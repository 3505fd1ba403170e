package testutil

import (
	"bytes"
	"encoding/binary"
)

// Container layout constants, mirrored from the reader.
const (
	archiveHeaderSize = 120
	archiveRecordSize = 144
	idPrefixCount     = 2
)

// ArchiveEntry describes one entry written by Archive.Bytes.
type ArchiveEntry struct {
	// Name is the stored name. Empty writes an out-of-range name index.
	Name string

	// Type is the stored type tag.
	Type string

	// Data is the entry content.
	Data []byte

	// Compressed stores Data as an OodleLike stream encoded with Mode.
	Compressed bool
	Mode       StreamMode

	// Prefixed writes a 12-byte prefix before a compressed payload and sets
	// the directory flag announcing it.
	Prefixed bool

	// Payload overrides the stored bytes; Data still sets the declared size.
	Payload []byte
}

// Archive builds an in-memory IDCL container.
type Archive struct {
	// Version is the header version. Zero writes 12.
	Version uint32

	Entries []ArchiveEntry
}

// Bytes serializes the container. Sections are laid out as header, names,
// id table, directory, then payloads in entry order.
func (a Archive) Bytes() []byte {
	version := a.Version
	if version == 0 {
		version = 12
	}

	var strs []string
	index := map[string]uint64{}
	intern := func(s string) uint64 {
		if i, ok := index[s]; ok {
			return i
		}
		index[s] = uint64(len(strs))
		strs = append(strs, s)
		return index[s]
	}

	type slotPair struct{ typ, name uint64 }
	slots := make([]slotPair, len(a.Entries))
	for i, e := range a.Entries {
		slots[i].typ = intern(e.Type)
		if e.Name == "" {
			slots[i].name = 1 << 40
		} else {
			slots[i].name = intern(e.Name)
		}
	}

	le := binary.LittleEndian
	var names bytes.Buffer
	names.Write(u64(uint64(len(strs))))
	var text bytes.Buffer
	for _, s := range strs {
		names.Write(u64(uint64(text.Len())))
		text.WriteString(s)
		text.WriteByte(0)
	}
	names.Write(text.Bytes())

	namesOff := uint64(archiveHeaderSize)
	idsOff := namesOff + uint64(names.Len())
	idsSize := uint64(idPrefixCount*4 + len(a.Entries)*16)
	infoOff := idsOff + idsSize
	dataOff := infoOff + uint64(len(a.Entries)*archiveRecordSize)

	var ids bytes.Buffer
	ids.Write(make([]byte, idPrefixCount*4))
	for _, s := range slots {
		ids.Write(u64(s.typ))
		ids.Write(u64(s.name))
	}

	var info, data bytes.Buffer
	for i, e := range a.Entries {
		payload := e.Payload
		if payload == nil {
			payload = e.Data
			if e.Compressed {
				payload = EncodeStream(e.Data, e.Mode)
			}
		}
		var flags uint64
		if e.Prefixed {
			payload = append(bytes.Repeat([]byte{0xEE}, 12), payload...)
			flags |= 4
		}

		rec := make([]byte, archiveRecordSize)
		le.PutUint64(rec[24:], uint64(2*i))
		le.PutUint64(rec[32:], uint64(2*i))
		le.PutUint64(rec[56:], dataOff+uint64(data.Len()))
		le.PutUint64(rec[64:], uint64(len(payload)))
		le.PutUint64(rec[72:], uint64(len(e.Data)))
		le.PutUint64(rec[112:], flags)
		info.Write(rec)
		data.Write(payload)
	}

	header := make([]byte, archiveHeaderSize)
	copy(header, "IDCL")
	le.PutUint32(header[4:], version)
	le.PutUint32(header[40:], uint32(len(a.Entries))) //nolint:gosec // test fixture sizes
	le.PutUint32(header[48:], idPrefixCount)
	le.PutUint32(header[52:], uint32(len(a.Entries))) //nolint:gosec // test fixture sizes
	le.PutUint64(header[72:], namesOff)
	le.PutUint64(header[88:], infoOff)
	le.PutUint64(header[104:], idsOff)
	le.PutUint64(header[112:], dataOff)

	var out bytes.Buffer
	out.Write(header)
	out.Write(names.Bytes())
	out.Write(ids.Bytes())
	out.Write(info.Bytes())
	out.Write(data.Bytes())
	return out.Bytes()
}

// RecordOffset returns the byte offset of directory record i in a container
// produced by Bytes, for tests that corrupt individual fields.
func RecordOffset(archive []byte, i int) int {
	infoOff := binary.LittleEndian.Uint64(archive[88:])
	return int(infoOff) + i*archiveRecordSize //nolint:gosec // test fixture sizes
}

func u64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
