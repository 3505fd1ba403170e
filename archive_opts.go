package idcl

import (
	"log/slog"

	"github.com/meigma/idcl/cache"
	"github.com/meigma/idcl/internal/file"
)

// DefaultMaxFileSize is the default limit on an entry's stored and
// decompressed size.
const DefaultMaxFileSize = file.DefaultMaxFileSize

// Option configures an Archive.
type Option func(*Archive)

// WithMaxFileSize limits the stored and decompressed size of every entry.
// Set limit to 0 to disable the limit. The default is 1 GiB.
func WithMaxFileSize(limit uint64) Option {
	return func(a *Archive) {
		a.maxFileSize = limit
	}
}

// WithCache enables caching of decompressed entries.
//
// Entries are keyed by the digest of their stored payload, so identical
// payloads in different archives share one cache slot. Concurrent requests
// for the same payload are deduplicated.
func WithCache(c cache.Cache) Option {
	return func(a *Archive) {
		a.cache = c
	}
}

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithName sets the name used in errors and reports. OpenFile defaults it to
// the file path.
func WithName(name string) Option {
	return func(a *Archive) {
		a.name = name
	}
}
