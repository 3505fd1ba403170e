package idcl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so we cache the size at construction.
type fileSource struct {
	file     *os.File
	size     int64
	sourceID string
}

func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	absPath, err := filepath.Abs(f.Name())
	if err != nil {
		absPath = f.Name()
	}
	return &fileSource{
		file:     f,
		size:     info.Size(),
		sourceID: fmt.Sprintf("file:%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano()),
	}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fs *fileSource) Size() int64 {
	return fs.size
}

// SourceID returns an identifier built from the path, size, and mtime.
func (fs *fileSource) SourceID() string {
	return fs.sourceID
}

// bytesSource serves an in-memory archive, typically a nested container.
type bytesSource struct {
	*bytes.Reader
	sourceID string
}

func newBytesSource(data []byte) *bytesSource {
	return &bytesSource{
		Reader:   bytes.NewReader(data),
		sourceID: digest.FromBytes(data).String(),
	}
}

// SourceID returns the content digest.
func (s *bytesSource) SourceID() string {
	return s.sourceID
}

// Interface compliance.
var (
	_ ByteSource = (*fileSource)(nil)
	_ ByteSource = (*bytesSource)(nil)
)
