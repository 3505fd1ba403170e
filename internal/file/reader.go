// Package file reads and decodes individual entry payloads.
package file

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/idcl/cache"
	"github.com/meigma/idcl/internal/codec"
	"github.com/meigma/idcl/internal/sizing"
)

// DefaultMaxFileSize is the default maximum payload and decoded size (1GB).
const DefaultMaxFileSize = 1 << 30

// ByteSource provides random access to the data.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Reader reads entry payloads from a ByteSource and decodes them.
//
// Every read uses an explicit offset and length, so a Reader may be shared
// by any number of goroutines.
type Reader struct {
	source      ByteSource
	maxFileSize uint64
	cache       cache.Cache
	group       singleflight.Group
	logger      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxFileSize sets the maximum payload and decoded size.
// Set to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxFileSize = limit
	}
}

// WithCache enables caching of decoded content for compressed entries.
func WithCache(c cache.Cache) Option {
	return func(r *Reader) {
		r.cache = c
	}
}

// WithLogger sets the logger for cache activity.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader for reading entries from the given source.
func NewReader(source ByteSource, opts ...Option) *Reader {
	r := &Reader{
		source:      source,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// ReadRaw reads the entry's payload exactly as stored.
func (r *Reader) ReadRaw(entry *Entry) ([]byte, error) {
	if err := ValidateForRead(entry, r.source.Size(), r.maxFileSize); err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	length, err := sizing.ToInt(entry.DataSize, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	offset, err := sizing.ToInt64(entry.DataOffset, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}

	buf := make([]byte, length)
	n, err := r.source.ReadAt(buf, offset)
	if n == length {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w: short read (%d of %d bytes)", entry.Name, ErrTruncatedArchive, n, length)
	}
	return nil, fmt.Errorf("read %s: %w", entry.Name, err)
}

// ReadAll reads the entry's payload and decodes it. The result is exactly
// entry.OriginalSize bytes and is owned by the caller.
func (r *Reader) ReadAll(entry *Entry) ([]byte, error) {
	payload, err := r.ReadRaw(entry)
	if err != nil {
		return nil, err
	}
	return r.Decode(entry, payload)
}

// Decode decodes a payload previously read with ReadRaw.
func (r *Reader) Decode(entry *Entry, payload []byte) ([]byte, error) {
	if r.cache == nil || entry.Method == codec.MethodStored {
		return r.decode(entry, payload)
	}

	key := cache.Key(payload)
	if content, ok := r.cache.Get(key); ok && uint64(len(content)) == entry.OriginalSize {
		r.log().Debug("cache hit", "entry", entry.Name, "key", key)
		return append([]byte(nil), content...), nil
	}

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		content, err := r.decode(entry, payload)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Put(key, content); err != nil {
			r.log().Warn("cache put failed", "entry", entry.Name, "error", err)
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	content, _ := v.([]byte) //nolint:errcheck // the group only stores []byte
	if uint64(len(content)) != entry.OriginalSize {
		// Another entry with an identical payload but a different declared
		// size shared this flight.
		return r.decode(entry, payload)
	}
	return append([]byte(nil), content...), nil
}

func (r *Reader) decode(entry *Entry, payload []byte) ([]byte, error) {
	content, err := codec.Decompress(payload, entry.OriginalSize, entry.Method)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", entry.Name, err)
	}
	return content, nil
}
