// Package codec decodes entry payloads stored in IDCL containers.
//
// Two methods exist. Stored payloads are the content itself. OodleLike
// payloads are a chunked LZ stream: every chunk decodes to ChunkSize bytes
// (the last one to the remainder) and starts with a 4-byte header holding
// the chunk kind and a little-endian uint24 payload length.
//
// Decoding is pure and holds no shared state, so a single process may run
// any number of decodes concurrently.
package codec

import (
	"fmt"

	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/internal/sizing"
)

// Method is an alias for restype.Method.
type Method = restype.Method

// Re-export method constants.
const (
	MethodStored    = restype.MethodStored
	MethodOodleLike = restype.MethodOodleLike
)

const (
	// ChunkSize is the decoded size of every chunk except the last.
	ChunkSize = 0x20000

	// ChunkHeaderSize is the size of a chunk header in bytes.
	ChunkHeaderSize = 4

	// MaxChunkPayload is the largest payload a chunk header can describe.
	MaxChunkPayload = 1<<24 - 1
)

// Chunk kinds.
const (
	ChunkRaw byte = iota
	ChunkLZ
	ChunkLZSplit
	ChunkFill
)

// Decompress decodes compressed into exactly expectedSize bytes.
//
// Stored payloads are returned unchanged when their length matches
// expectedSize and fail with restype.ErrSizeMismatch otherwise. OodleLike
// payloads that do not decode to exactly expectedSize bytes fail with
// restype.ErrCorruptStream.
func Decompress(compressed []byte, expectedSize uint64, method Method) ([]byte, error) {
	switch method {
	case MethodStored:
		if uint64(len(compressed)) != expectedSize {
			return nil, fmt.Errorf("%w: have %d bytes, want %d", restype.ErrSizeMismatch, len(compressed), expectedSize)
		}
		return compressed, nil
	case MethodOodleLike:
		size, err := sizing.ToInt(expectedSize, restype.ErrSizeOverflow)
		if err != nil {
			return nil, err
		}
		return decodeStream(compressed, size)
	default:
		return nil, fmt.Errorf("%w: unknown compression method %d", restype.ErrCorruptStream, method)
	}
}

// decodeStream decodes a chunked stream into a new buffer of exactly size bytes.
func decodeStream(src []byte, size int) ([]byte, error) {
	chunks := (size + ChunkSize - 1) / ChunkSize
	if chunks > len(src)/ChunkHeaderSize {
		return nil, corrupt("%d bytes cannot hold %d chunks", len(src), chunks)
	}

	dst := make([]byte, size)
	pos, si := 0, 0
	for pos < size {
		kind := src[si]
		n := u24(src[si+1:])
		si += ChunkHeaderSize
		if n > len(src)-si {
			return nil, corrupt("chunk at %d: payload of %d bytes exceeds input", si-ChunkHeaderSize, n)
		}
		end := min(pos+ChunkSize, size)
		if err := decodeChunk(dst, pos, end, kind, src[si:si+n]); err != nil {
			return nil, fmt.Errorf("chunk at %d: %w", si-ChunkHeaderSize, err)
		}
		si += n
		pos = end

		if pos < size && len(src)-si < ChunkHeaderSize {
			return nil, corrupt("truncated chunk header at %d", si)
		}
	}
	if si != len(src) {
		return nil, corrupt("%d trailing bytes after final chunk", len(src)-si)
	}
	return dst, nil
}

// decodeChunk fills dst[pos:end] from a single chunk payload.
func decodeChunk(dst []byte, pos, end int, kind byte, payload []byte) error {
	switch kind {
	case ChunkRaw:
		if len(payload) != end-pos {
			return corrupt("raw chunk holds %d bytes, want %d", len(payload), end-pos)
		}
		copy(dst[pos:end], payload)
		return nil
	case ChunkFill:
		if len(payload) != 1 {
			return corrupt("fill chunk payload is %d bytes", len(payload))
		}
		b := payload[0]
		for i := pos; i < end; i++ {
			dst[i] = b
		}
		return nil
	case ChunkLZ:
		return decodeSequences(dst, pos, end, payload, nil, false)
	case ChunkLZSplit:
		lits, cmds, err := splitLiterals(payload, end-pos)
		if err != nil {
			return err
		}
		return decodeSequences(dst, pos, end, cmds, lits, true)
	default:
		return corrupt("unknown chunk kind %d", kind)
	}
}

func u24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{restype.ErrCorruptStream}, args...)...)
}
