// Package testutil provides fixtures for tests: in-memory sources and caches,
// and builders for archives, compressed streams, meshes, and images.
package testutil

import (
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
	id   string
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns the digest of the backing data.
func (m *MockByteSource) SourceID() string {
	if m.id == "" {
		m.id = "mock:" + digest.FromBytes(m.data).Encoded()
	}
	return m.id
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// MockCache implements a concurrency-safe cache for tests and counts hits.
type MockCache struct {
	mu   sync.RWMutex
	data map[digest.Digest][]byte
	hits int
}

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[digest.Digest][]byte)}
}

// Get returns cached content for key.
func (c *MockCache) Get(key digest.Digest) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.data[key]
	if ok {
		c.hits++
	}
	return content, ok
}

// Put stores a copy of content under key.
func (c *MockCache) Put(key digest.Digest, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), content...)
	return nil
}

// Delete removes key from the cache.
func (c *MockCache) Delete(key digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Len returns the number of cached entries.
func (c *MockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Hits returns the number of successful lookups.
func (c *MockCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}
