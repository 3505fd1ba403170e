// Package cache provides caching of decoded entry content.
//
// Decoding large compressed entries dominates extraction time when the same
// archive is processed repeatedly, or when nested containers are reopened.
// A cache lets the extractor skip the decode step for payloads it has seen.
//
// Two implementations are provided: [github.com/meigma/idcl/cache/memory], a
// bounded LRU held in process memory, and [github.com/meigma/idcl/cache/disk],
// which persists zstd-compressed content under a directory.
package cache
