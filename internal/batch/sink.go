package batch

import (
	"bytes"
	"io"
	"maps"
	"sync"

	"github.com/meigma/idcl/internal/restype"
)

// Entry is an alias for restype.Entry.
type Entry = restype.Entry

// Sink receives decoded artifacts during batch extraction.
//
// Artifacts are addressed by a slash-separated relative path. One entry may
// produce several artifacts (a model with many parts, an image with mips).
type Sink interface {
	// ShouldWrite returns false if the artifact at path should be skipped,
	// for example because it already exists.
	ShouldWrite(path string) bool

	// Writer returns a writer for the artifact at path.
	// The returned Committer must have Commit() called after a successful
	// write, or Discard() called on any error.
	//
	// A goroutine must finish one Committer before requesting another.
	Writer(path string) (Committer, error)
}

// Committer is a writer that can be committed or discarded.
//
// Implementations should buffer or stage writes until Commit is called.
// For example, a file-based implementation might write to a temp file
// and rename it on Commit, or delete it on Discard.
type Committer interface {
	io.Writer

	// Commit finalizes the write, making content available.
	Commit() error

	// Discard aborts the write and cleans up any temporary resources.
	Discard() error
}

// MemorySink collects artifacts in memory.
type MemorySink struct {
	mu        sync.Mutex
	files     map[string][]byte
	overwrite bool
}

// NewMemorySink creates an empty MemorySink. Existing paths are replaced
// only when overwrite is true.
func NewMemorySink(overwrite bool) *MemorySink {
	return &MemorySink{files: make(map[string][]byte), overwrite: overwrite}
}

// ShouldWrite reports whether path is absent or overwrite is enabled.
func (s *MemorySink) ShouldWrite(path string) bool {
	if s.overwrite {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return !ok
}

// Writer returns a Committer that stores its content on Commit.
func (s *MemorySink) Writer(path string) (Committer, error) {
	return &memoryCommitter{sink: s, path: path}, nil
}

// Files returns a copy of the committed artifacts keyed by path.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.files)
}

// Get returns the committed content at path.
func (s *MemorySink) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path]
	return b, ok
}

type memoryCommitter struct {
	sink *MemorySink
	path string
	buf  bytes.Buffer
}

func (c *memoryCommitter) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *memoryCommitter) Commit() error {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	c.sink.files[c.path] = c.buf.Bytes()
	return nil
}

func (c *memoryCommitter) Discard() error {
	c.buf.Reset()
	return nil
}
