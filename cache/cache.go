package cache

import "github.com/opencontainers/go-digest"

// Cache stores decoded entry content keyed by the digest of the compressed
// payload it was decoded from.
//
// Because the key commits to the exact input bytes and decoding is
// deterministic, a hit can be used without decoding again.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached content for key.
	// Returns nil, false if content is not cached.
	// Callers must not modify the returned slice.
	Get(key digest.Digest) ([]byte, bool)

	// Put stores content under key. The cache keeps its own copy.
	Put(key digest.Digest, content []byte) error

	// Delete removes cached content for key.
	// Implementations should treat missing entries as a no-op.
	Delete(key digest.Digest) error
}

// Key returns the cache key for a compressed payload.
func Key(payload []byte) digest.Digest {
	return digest.Canonical.FromBytes(payload)
}
