package idcl

import (
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/meigma/idcl/cache"
	"github.com/meigma/idcl/internal/directory"
	"github.com/meigma/idcl/internal/file"
)

// Header is the parsed fixed header of a container.
type Header = directory.Header

// Archive is an opened container. Its directory is held in memory; entry
// payloads are read from the source on demand.
//
// An Archive is safe for concurrent use.
type Archive struct {
	name        string
	source      ByteSource
	dir         *directory.Directory
	reader      *file.Reader
	maxFileSize uint64
	cache       cache.Cache
	logger      *slog.Logger
	opts        []Option
	closer      func() error
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Open parses the container directory from source.
//
// Every entry's payload range is validated against the source size; if any
// entry is out of bounds Open fails and returns no archive.
func Open(source ByteSource, opts ...Option) (*Archive, error) {
	a := &Archive{
		name:        source.SourceID(),
		source:      source,
		maxFileSize: file.DefaultMaxFileSize,
		opts:        opts,
	}
	for _, opt := range opts {
		opt(a)
	}

	dir, err := directory.Read(source, source.Size())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.name, err)
	}
	a.dir = dir

	readerOpts := []file.Option{
		file.WithMaxFileSize(a.maxFileSize),
		file.WithLogger(a.logger),
	}
	if a.cache != nil {
		readerOpts = append(readerOpts, file.WithCache(a.cache))
	}
	a.reader = file.NewReader(source, readerOpts...)

	h := dir.Header()
	a.log().Debug("archive opened", "archive", a.name, "version", h.Version, "entries", dir.Len())
	return a, nil
}

// OpenFile opens a container file for random access.
// The returned Archive must be closed to release the file.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	source, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	a, err := Open(source, append([]Option{WithName(path)}, opts...)...)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f.Close
	return a, nil
}

// OpenBytes opens a container held in memory, such as a nested container
// extracted from another archive.
func OpenBytes(name string, data []byte, opts ...Option) (*Archive, error) {
	return Open(newBytesSource(data), append([]Option{WithName(name)}, opts...)...)
}

// Close releases the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer()
	a.closer = nil
	return err
}

// Name returns the archive's display name.
func (a *Archive) Name() string {
	return a.name
}

// Header returns the parsed container header.
func (a *Archive) Header() Header {
	return a.dir.Header()
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return a.dir.Len()
}

// Entries returns the entries in directory order.
//
// The sequence is finite and restartable; each Entry is a copy.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range a.dir.Entries() {
			if !yield(*e) {
				return
			}
		}
	}
}

// Entry returns the entry at index i.
func (a *Archive) Entry(i int) (Entry, bool) {
	e, ok := a.dir.Entry(i)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Lookup returns the first entry whose normalized name is name.
func (a *Archive) Lookup(name string) (Entry, bool) {
	e, ok := a.dir.Lookup(name)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// ReadRaw returns the entry's payload exactly as stored.
func (a *Archive) ReadRaw(entry Entry) ([]byte, error) {
	return a.reader.ReadRaw(&entry)
}

// Extract reads and decompresses one entry. The returned data is exactly
// entry.OriginalSize bytes and is owned by the caller.
func (a *Archive) Extract(entry Entry) (*Asset, error) {
	data, err := a.reader.ReadAll(&entry)
	if err != nil {
		return nil, err
	}
	return &Asset{Entry: entry, Data: data}, nil
}
