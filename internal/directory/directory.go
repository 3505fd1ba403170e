// Package directory parses IDCL container headers and directories.
package directory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/cespare/xxhash/v2"

	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/internal/sizing"
)

// Entry is an alias for restype.Entry.
type Entry = restype.Entry

// Directory flag bits that control the payload prefix.
const (
	flagPrefixed = 1 << 2
	flagInline   = 1 << 0

	// prefixSize is the per-entry header that precedes some compressed payloads.
	prefixSize = 12
)

// Directory is the parsed, validated entry table of one container.
type Directory struct {
	header  Header
	entries []Entry
	byName  map[string]int
}

// Read parses the container header and directory from src.
//
// The whole directory is validated before Read returns: any record whose
// payload extends past size fails the call with restype.ErrTruncatedArchive,
// so callers never observe a partially valid directory.
func Read(src io.ReaderAt, size int64) (*Directory, error) {
	if size < 0 {
		return nil, restype.ErrSizeOverflow
	}
	r := &reader{src: src, size: uint64(size)}

	hb, err := r.read(0, min(HeaderSize, r.size))
	if err != nil {
		return nil, err
	}
	h, err := ParseHeader(hb)
	if err != nil {
		return nil, err
	}

	names, err := r.readNames(h)
	if err != nil {
		return nil, err
	}
	entries, err := r.readEntries(h, names)
	if err != nil {
		return nil, err
	}

	d := &Directory{header: h, entries: entries, byName: make(map[string]int, len(entries))}
	for i := range entries {
		if _, dup := d.byName[entries[i].Name]; !dup {
			d.byName[entries[i].Name] = i
		}
	}
	return d, nil
}

// Header returns the container header.
func (d *Directory) Header() Header {
	return d.header
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Entry returns the entry at directory position i.
func (d *Directory) Entry(i int) (*Entry, bool) {
	if i < 0 || i >= len(d.entries) {
		return nil, false
	}
	return &d.entries[i], true
}

// Lookup returns the first entry with the given normalized name.
func (d *Directory) Lookup(name string) (*Entry, bool) {
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return &d.entries[i], true
}

// Entries returns an iterator over all entries in directory order.
func (d *Directory) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for i := range d.entries {
			if !yield(&d.entries[i]) {
				return
			}
		}
	}
}

type reader struct {
	src  io.ReaderAt
	size uint64
}

// read returns exactly n bytes at off or restype.ErrTruncatedArchive.
func (r *reader) read(off, n uint64) ([]byte, error) {
	if !sizing.InBounds(off, n, r.size) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d exceed archive size %d", restype.ErrTruncatedArchive, n, off, r.size)
	}
	length, err := sizing.ToInt(n, restype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	got, err := r.src.ReadAt(buf, int64(off)) //nolint:gosec // bounded by archive size above
	if got == length {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: short read at offset %d (%d of %d bytes)", restype.ErrTruncatedArchive, off, got, length)
	}
	return nil, err
}

// readNames reads the string table: a count, that many offsets relative to
// the end of the offset table, and NUL-terminated strings.
func (r *reader) readNames(h Header) ([]string, error) {
	cb, err := r.read(h.NamesOffset, 8)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	count := binary.LittleEndian.Uint64(cb)
	tableSize, ok := sizing.MulUint64(count, 8)
	if !ok {
		return nil, fmt.Errorf("names: %w: %d names", restype.ErrTruncatedArchive, count)
	}
	ob, err := r.read(h.NamesOffset+8, tableSize)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	base := h.NamesOffset + 8 + tableSize

	// The string block runs to the next section or the end of the archive.
	end := r.size
	for _, off := range []uint64{h.InfoOffset, h.IDsOffset, h.DataOffset} {
		if off > base && off < end {
			end = off
		}
	}
	block, err := r.read(base, end-base)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}

	names := make([]string, count)
	for i := range names {
		rel := binary.LittleEndian.Uint64(ob[i*8:])
		s, err := cstring(block, rel)
		if err != nil {
			return nil, fmt.Errorf("names[%d]: %w", i, err)
		}
		names[i] = s
	}
	return names, nil
}

func cstring(block []byte, off uint64) (string, error) {
	if off >= uint64(len(block)) {
		return "", fmt.Errorf("%w: string offset %d outside string block", restype.ErrTruncatedArchive, off)
	}
	s := block[off:]
	for i, c := range s {
		if c == 0 {
			return string(s[:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string at %d", restype.ErrTruncatedArchive, off)
}

// readEntries decodes and validates every directory record.
func (r *reader) readEntries(h Header, names []string) ([]Entry, error) {
	if h.FileCount == 0 {
		return nil, nil
	}
	dirSize, _ := sizing.MulUint64(uint64(h.FileCount), RecordSize)
	records, err := r.read(h.InfoOffset, dirSize)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}

	ids, err := r.readIDs(h, records)
	if err != nil {
		return nil, err
	}

	resolve := func(slot uint64) string {
		idx := ids[slot]
		if idx >= uint64(len(names)) {
			return ""
		}
		return names[idx]
	}

	le := binary.LittleEndian
	entries := make([]Entry, h.FileCount)
	for i := range entries {
		rec := records[i*RecordSize : (i+1)*RecordSize]
		typeID := le.Uint64(rec[24:])
		nameID := le.Uint64(rec[32:])
		e := Entry{
			Index:        i,
			TypeTag:      resolve(typeID),
			RawName:      resolve(nameID + 1),
			DataOffset:   le.Uint64(rec[56:]),
			DataSize:     le.Uint64(rec[64:]),
			OriginalSize: le.Uint64(rec[72:]),
			Flags:        le.Uint64(rec[112:]),
		}
		if err := finishEntry(&e, r.size); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.RawName, err)
		}
		entries[i] = e
	}
	return entries, nil
}

// readIDs reads the id-table slots referenced by the records.
func (r *reader) readIDs(h Header, records []byte) ([]uint64, error) {
	le := binary.LittleEndian
	var slots uint64
	for i := 0; i < len(records); i += RecordSize {
		typeID := le.Uint64(records[i+24:])
		nameID := le.Uint64(records[i+32:])
		if typeID == ^uint64(0) || nameID >= ^uint64(0)-1 {
			return nil, fmt.Errorf("ids: %w: id slot overflow", restype.ErrTruncatedArchive)
		}
		slots = max(slots, typeID+1, nameID+2)
	}

	base, ok := h.idsBase()
	if !ok {
		return nil, fmt.Errorf("ids: %w: table offset overflow", restype.ErrTruncatedArchive)
	}
	tableSize, ok := sizing.MulUint64(slots, 8)
	if !ok {
		return nil, fmt.Errorf("ids: %w: %d slots", restype.ErrTruncatedArchive, slots)
	}
	b, err := r.read(base, tableSize)
	if err != nil {
		return nil, fmt.Errorf("ids: %w", err)
	}
	ids := make([]uint64, slots)
	for i := range ids {
		ids[i] = le.Uint64(b[i*8:])
	}
	return ids, nil
}

// finishEntry derives the name, identifier, and method, applies the payload
// prefix, and checks the payload lies inside the archive.
func finishEntry(e *Entry, archiveSize uint64) error {
	e.Name = NormalizeName(e.RawName, e.Index)
	if e.RawName != "" {
		e.ID = xxhash.Sum64String(e.RawName)
	} else {
		e.ID = xxhash.Sum64String(e.Name)
	}

	e.Method = restype.MethodStored
	if e.DataSize != e.OriginalSize {
		e.Method = restype.MethodOodleLike
		if e.Flags&flagPrefixed != 0 && e.Flags&flagInline == 0 {
			if e.DataSize < prefixSize {
				return fmt.Errorf("%w: %d byte payload is shorter than its prefix", restype.ErrTruncatedArchive, e.DataSize)
			}
			off, ok := sizing.AddUint64(e.DataOffset, prefixSize)
			if !ok {
				return fmt.Errorf("%w: payload offset overflow", restype.ErrTruncatedArchive)
			}
			e.DataOffset = off
			e.DataSize -= prefixSize
		}
	}

	if !sizing.InBounds(e.DataOffset, e.DataSize, archiveSize) {
		return fmt.Errorf("%w: payload [%d, +%d) exceeds archive size %d",
			restype.ErrTruncatedArchive, e.DataOffset, e.DataSize, archiveSize)
	}
	return nil
}

func addMul(base, n, size uint64) (uint64, bool) {
	p, ok := sizing.MulUint64(n, size)
	if !ok {
		return 0, false
	}
	return sizing.AddUint64(base, p)
}
