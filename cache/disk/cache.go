// Package disk implements a persistent cache of decoded entries.
package disk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
	fileSuffix            = ".zst"
)

// Cache implements cache.Cache using the local filesystem.
// Content is stored zstd-compressed, one file per key, in a directory
// hierarchy sharded by key prefix. The cache is safe for concurrent use.
type Cache struct {
	dir            string       // root directory for cached files
	shardPrefixLen int          // number of hex chars for subdirectory sharding
	dirPerm        os.FileMode  // permissions for created directories
	maxBytes       int64        // maximum on-disk size (0 = unlimited)
	bytes          atomic.Int64 // current on-disk size of cached files
	pruneMu        sync.Mutex   // serializes prune operations
	level          zstd.EncoderLevel
	encOnce        sync.Once
	enc            *zstd.Encoder
	dec            *zstd.Decoder
}

// Option configures a disk cache.
type Option func(*Cache)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.shardPrefixLen = n
	}
}

// WithDirPerm sets the directory permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirPerm = mode
	}
}

// WithMaxBytes sets the maximum on-disk cache size in bytes.
// Values < 0 are invalid. Use 0 to disable the limit.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		c.maxBytes = n
	}
}

// WithEncoderLevel sets the zstd level used for stored content.
func WithEncoderLevel(level zstd.EncoderLevel) Option {
	return func(c *Cache) {
		c.level = level
	}
}

// New creates a disk-backed cache rooted at dir.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	c := &Cache{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
		level:          zstd.SpeedFastest,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if c.maxBytes < 0 {
		return nil, errors.New("max bytes must be >= 0")
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, err
	}
	_, size, err := scanDir(dir)
	if err != nil {
		return nil, err
	}
	c.bytes.Store(size)

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	c.dec = dec
	return c, nil
}

// Close releases the encoder and decoder resources.
func (c *Cache) Close() error {
	if c.enc != nil {
		_ = c.enc.Close() //nolint:errcheck // encoder holds no external state
	}
	c.dec.Close()
	return nil
}

// Get returns the decoded content for key.
// Unreadable or corrupt files are treated as misses.
func (c *Cache) Get(key digest.Digest) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	packed, err := os.ReadFile(path) //nolint:gosec // path is derived from the digest, not user input
	if err != nil {
		return nil, false
	}
	content, err := c.dec.DecodeAll(packed, nil)
	if err != nil {
		_ = c.Delete(key) //nolint:errcheck // best-effort removal of a corrupt file
		return nil, false
	}
	if content == nil {
		content = []byte{}
	}
	return content, true
}

// Put stores content under key. Existing entries are left untouched.
func (c *Cache) Put(key digest.Digest, content []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil
	}

	enc, err := c.encoder()
	if err != nil {
		return err
	}
	packed := enc.EncodeAll(content, nil)
	need := int64(len(packed))

	if ok, err := c.ensureCapacity(need); err != nil {
		return err
	} else if !ok {
		return nil
	}

	dir := filepath.Dir(path)
	if mkdirErr := os.MkdirAll(dir, c.dirPerm); mkdirErr != nil {
		return mkdirErr
	}
	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(packed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		if _, statErr := os.Stat(path); statErr == nil {
			return nil
		}
		return err
	}
	c.bytes.Add(need)
	return nil
}

// Delete removes cached content for key.
func (c *Cache) Delete(key digest.Digest) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return nil
		}
		return statErr
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	c.bytes.Add(-info.Size())
	return nil
}

// MaxBytes returns the configured cache size limit (0 = unlimited).
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}

// SizeBytes returns the current on-disk cache size in bytes.
func (c *Cache) SizeBytes() int64 {
	return c.bytes.Load()
}

// Prune removes the least recently written entries until the cache is at or
// below targetBytes. Returns the number of bytes freed.
func (c *Cache) Prune(targetBytes int64) (int64, error) {
	if targetBytes < 0 {
		targetBytes = 0
	}
	c.pruneMu.Lock()
	defer c.pruneMu.Unlock()

	freed, remaining, err := pruneDir(c.dir, targetBytes)
	if err != nil {
		return 0, err
	}
	c.bytes.Store(remaining)
	return freed, nil
}

func (c *Cache) encoder() (*zstd.Encoder, error) {
	var err error
	c.encOnce.Do(func() {
		c.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level), zstd.WithEncoderConcurrency(1))
	})
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	if c.enc == nil {
		return nil, errors.New("create encoder: unavailable")
	}
	return c.enc, nil
}

func (c *Cache) path(key digest.Digest) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	hexKey := key.Encoded()
	if c.shardPrefixLen <= 0 {
		return filepath.Join(c.dir, hexKey+fileSuffix), nil
	}
	prefixLen := min(c.shardPrefixLen, len(hexKey))
	return filepath.Join(c.dir, hexKey[:prefixLen], hexKey+fileSuffix), nil
}

func (c *Cache) ensureCapacity(need int64) (bool, error) {
	if c.maxBytes <= 0 {
		return true, nil
	}
	if need > c.maxBytes {
		return false, nil
	}
	if c.SizeBytes()+need <= c.maxBytes {
		return true, nil
	}
	if _, err := c.Prune(c.maxBytes - need); err != nil {
		return false, err
	}
	return c.SizeBytes()+need <= c.maxBytes, nil
}
