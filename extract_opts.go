package idcl

import (
	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/internal/batch"
	"github.com/meigma/idcl/mesh"
	"github.com/meigma/idcl/texture"
)

// DefaultMaxDepth is the default nesting limit for containers inside
// containers.
const DefaultMaxDepth = 4

// garbageSizeLimit is the size below which an extensionless root-level entry
// is treated as garbage.
const garbageSizeLimit = 100

// ExtractOption configures ExtractTo and ExtractAll.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	workers        int
	maxInflight    int64
	overwrite      bool
	extractGarbage bool
	keepFailed     bool
	keepRaw        bool
	maxDepth       int
	filter         func(Entry) bool
	progress       ProgressFunc
	dispatchOpts   []dispatch.Option

	// Shared by every nesting level of one extraction.
	limiter *batch.Limiter
}

func newExtractConfig(opts []ExtractOption) *extractConfig {
	cfg := &extractConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.limiter = batch.NewLimiter(cfg.workers, cfg.maxInflight)
	return cfg
}

// ExtractWithWorkers sets the number of entries extracted concurrently,
// counted across nested containers. Values < 1 use GOMAXPROCS.
func ExtractWithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = n
	}
}

// ExtractWithMaxInflightBytes caps the decompressed bytes held in memory by
// running workers, counted across nested containers. A container's own bytes
// leave the budget while its entries run. Zero disables the cap.
func ExtractWithMaxInflightBytes(limit int64) ExtractOption {
	return func(c *extractConfig) {
		c.maxInflight = limit
	}
}

// ExtractWithOverwrite replaces existing files. By default, artifacts that
// already exist are skipped. Only used by ExtractAll; ExtractTo defers to
// the sink.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithGarbage extracts entries that are normally skipped as garbage:
// extensionless entries at the archive root smaller than 100 bytes.
func ExtractWithGarbage(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.extractGarbage = enabled
	}
}

// ExtractWithKeepFailed writes the stored payload of entries that fail to
// decompress as "<name>.compressed".
func ExtractWithKeepFailed(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.keepFailed = enabled
	}
}

// ExtractWithKeepRaw writes the decompressed bytes of entries whose decoder
// fails under the entry's own name.
func ExtractWithKeepRaw(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.keepRaw = enabled
	}
}

// ExtractWithMaxDepth limits how many levels of nested containers are
// expanded. Containers past the limit are written unchanged. Zero writes
// every nested container unchanged.
func ExtractWithMaxDepth(depth int) ExtractOption {
	return func(c *extractConfig) {
		c.maxDepth = depth
	}
}

// ExtractWithFilter extracts only top-level entries for which fn returns
// true. Rejected entries are reported as skipped.
func ExtractWithFilter(fn func(Entry) bool) ExtractOption {
	return func(c *extractConfig) {
		c.filter = fn
	}
}

// ExtractWithProgress sets a callback for progress updates.
// The callback must be safe for concurrent use.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(c *extractConfig) {
		c.progress = fn
	}
}

// ExtractWithMeshFormat selects OBJ or GLB output for model parts.
func ExtractWithMeshFormat(f dispatch.MeshFormat) ExtractOption {
	return func(c *extractConfig) {
		c.dispatchOpts = append(c.dispatchOpts, dispatch.WithMeshFormat(f))
	}
}

// ExtractWithMeshOptions passes writer options, such as axis conversion,
// to every model part.
func ExtractWithMeshOptions(opts ...mesh.WriteOption) ExtractOption {
	return func(c *extractConfig) {
		c.dispatchOpts = append(c.dispatchOpts, dispatch.WithMeshOptions(opts...))
	}
}

// ExtractWithImageEncoding selects the raster format for images.
func ExtractWithImageEncoding(e texture.Encoding) ExtractOption {
	return func(c *extractConfig) {
		c.dispatchOpts = append(c.dispatchOpts, dispatch.WithImageEncoding(e))
	}
}

// ExtractWithAllMips writes every mip level of images, not only the base.
func ExtractWithAllMips(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.dispatchOpts = append(c.dispatchOpts, dispatch.WithAllMips(enabled))
	}
}

// ExtractWithHandler registers a decoder for kind, replacing the built-in
// handling. Container recursion cannot be replaced.
func ExtractWithHandler(kind Kind, h dispatch.Handler) ExtractOption {
	return func(c *extractConfig) {
		c.dispatchOpts = append(c.dispatchOpts, dispatch.WithHandler(kind, h))
	}
}
