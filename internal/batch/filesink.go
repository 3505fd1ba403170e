package batch

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// lockStripes is the number of path locks shared by a FileSink.
const lockStripes = 64

// FileSink writes artifacts to the filesystem.
//
// Files are written to a temporary file in the same directory and renamed to
// the final path on Commit. This ensures that partially
// written files are never visible at the final path. Writers for the same
// path are serialized; distinct paths proceed in parallel unless they share
// a lock stripe.
type FileSink struct {
	destDir   string
	overwrite bool
	locks     [lockStripes]sync.Mutex
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func WithOverwrite(overwrite bool) FileSinkOption {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// NewFileSink creates a FileSink that writes to destDir.
//
// destDir must be an absolute path or relative to the current directory.
// It is created if missing; parent directories of artifacts are created as
// needed.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		destDir: destDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the destination directory.
func (s *FileSink) Dir() string {
	return s.destDir
}

// ShouldWrite returns false if the file already exists and overwrite is
// disabled, or if path is not a valid relative path.
func (s *FileSink) ShouldWrite(path string) bool {
	if !fs.ValidPath(path) {
		return false
	}
	if s.overwrite {
		return true
	}
	_, err := os.Stat(filepath.Join(s.destDir, filepath.FromSlash(path)))
	return errors.Is(err, fs.ErrNotExist)
}

func (s *FileSink) lockFor(path string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(path)%lockStripes]
}

// Writer returns a Committer for path. The path lock is held until Commit
// or Discard returns.
func (s *FileSink) Writer(path string) (Committer, error) {
	if !fs.ValidPath(path) || path == "." {
		return nil, &fs.PathError{Op: "write", Path: path, Err: fs.ErrInvalid}
	}
	destPath := filepath.Join(s.destDir, filepath.FromSlash(path))
	destRel := filepath.FromSlash(path)

	if err := os.MkdirAll(s.destDir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", s.destDir, err)
	}
	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", s.destDir, err)
	}
	if err := root.MkdirAll(filepath.Dir(destRel), 0o750); err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create directory %s: %w", filepath.Dir(destPath), err)
	}

	lock := s.lockFor(path)
	lock.Lock()

	// Create temp file in same directory (for atomic rename)
	tempFile, tempRel, err := createTempFile(root, filepath.Dir(destRel), ".idcl-")
	if err != nil {
		lock.Unlock()
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &fileCommitter{
		destPath: destPath,
		destRel:  destRel,
		file:     tempFile,
		tempRel:  tempRel,
		root:     root,
		unlock:   lock.Unlock,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	destPath string
	destRel  string
	file     *os.File
	tempRel  string
	root     *os.Root
	unlock   func()
	done     bool
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.file.Write(p)
}

// release closes the root and drops the path lock exactly once.
func (c *fileCommitter) release() {
	if c.done {
		return
	}
	c.done = true
	_ = c.root.Close() //nolint:errcheck // best-effort cleanup
	c.unlock()
}

// Commit closes the staged file and renames it to the final path.
func (c *fileCommitter) Commit() error {
	defer c.release()

	if err := c.file.Close(); err != nil {
		_ = c.root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close file: %w", err)
	}

	// Atomic rename to final path
	if err := c.root.Rename(c.tempRel, c.destRel); err != nil {
		_ = c.root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destPath, err)
	}
	return nil
}

// Discard closes and removes the staged file.
func (c *fileCommitter) Discard() error {
	defer c.release()
	_ = c.file.Close() //nolint:errcheck // we're cleaning up
	return c.root.Remove(c.tempRel)
}

func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
