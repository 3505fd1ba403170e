//go:generate flatc --go --go-namespace fb -o internal schema/manifest.fbs

// Package idcl reads IDCL game resource containers and extracts their
// entries as usable files.
//
// An archive is opened from any random-access ByteSource: a local file, an
// in-memory buffer, or an HTTP server that honors range requests. Opening
// parses the directory and validates every entry's bounds; nothing is
// decompressed until an entry is extracted.
//
// Extraction decompresses each entry and routes it by kind. Models become one
// OBJ or GLB file per part, images become PNG, BMP, or TIFF rasters, nested
// containers are extracted recursively, and everything else is written
// unchanged. A batch never stops on a bad entry: each outcome is recorded in
// a Report, which can be saved as a FlatBuffers manifest.
package idcl
