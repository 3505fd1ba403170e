// Package memory implements an in-process LRU cache of decoded entries.
package memory

import (
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/opencontainers/go-digest"
)

// DefaultEntries is the default number of entries held.
const DefaultEntries = 256

// Cache implements cache.Cache with a fixed-capacity LRU.
// Entries larger than the per-entry limit are not cached.
type Cache struct {
	lru      *lru.Cache[digest.Digest, []byte]
	maxEntry int
	bytes    atomic.Int64
}

// Option configures a memory cache.
type Option func(*Cache)

// WithMaxEntryBytes skips caching content larger than n bytes.
// Use 0 to disable the limit.
func WithMaxEntryBytes(n int) Option {
	return func(c *Cache) {
		c.maxEntry = n
	}
}

// New creates a cache holding at most entries items.
func New(entries int, opts ...Option) (*Cache, error) {
	if entries <= 0 {
		return nil, errors.New("memory cache: entries must be > 0")
	}
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	l, err := lru.NewWithEvict(entries, func(_ digest.Digest, v []byte) {
		c.bytes.Add(-int64(len(v)))
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get returns cached content for key.
func (c *Cache) Get(key digest.Digest) ([]byte, bool) {
	return c.lru.Get(key)
}

// Put stores a copy of content under key.
func (c *Cache) Put(key digest.Digest, content []byte) error {
	if c.maxEntry > 0 && len(content) > c.maxEntry {
		return nil
	}
	owned := append([]byte(nil), content...)
	if present, _ := c.lru.ContainsOrAdd(key, owned); !present {
		c.bytes.Add(int64(len(owned)))
	}
	return nil
}

// Delete removes key from the cache.
func (c *Cache) Delete(key digest.Digest) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// SizeBytes returns the total size of cached content.
func (c *Cache) SizeBytes() int64 {
	return c.bytes.Load()
}
