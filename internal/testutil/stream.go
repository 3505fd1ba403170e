package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/huff0"
	"github.com/pierrec/lz4/v4"
)

// Stream chunk layout, mirrored from the decoder.
const (
	ChunkSize = 0x20000

	chunkRaw     = 0
	chunkLZ      = 1
	chunkLZSplit = 2
	chunkFill    = 3
)

// StreamMode selects how EncodeStream encodes chunks.
type StreamMode int

const (
	// StreamLZ emits LZ chunks with inline literals.
	StreamLZ StreamMode = iota
	// StreamSplit emits LZ chunks with a separate, entropy coded literal section.
	StreamSplit
	// StreamRaw emits raw chunks only.
	StreamRaw
)

// EncodeStream encodes data as a chunked OodleLike stream. Chunks holding a
// single repeated byte become fill chunks and incompressible chunks fall back
// to raw, regardless of mode.
func EncodeStream(data []byte, mode StreamMode) []byte {
	var out bytes.Buffer
	for start := 0; start < len(data); start += ChunkSize {
		chunk := data[start:min(start+ChunkSize, len(data))]
		kind, payload := encodeChunk(chunk, mode)
		out.Write(ChunkHeader(kind, len(payload)))
		out.Write(payload)
	}
	return out.Bytes()
}

// ChunkHeader returns a chunk header for the given kind and payload length.
func ChunkHeader(kind byte, n int) []byte {
	return []byte{kind, byte(n), byte(n >> 8), byte(n >> 16)}
}

func encodeChunk(chunk []byte, mode StreamMode) (byte, []byte) {
	if mode != StreamRaw && isFill(chunk) {
		return chunkFill, chunk[:1]
	}
	if mode == StreamRaw {
		return chunkRaw, chunk
	}

	var c lz4.Compressor
	block := make([]byte, lz4.CompressBlockBound(len(chunk)))
	n, err := c.CompressBlock(chunk, block)
	if err != nil || n == 0 || n >= len(chunk) {
		return chunkRaw, chunk
	}
	block = block[:n]
	if mode == StreamLZ {
		return chunkLZ, block
	}
	return chunkLZSplit, splitBlock(block)
}

// splitBlock moves the literals of an LZ4 block into a literal section that
// precedes the command stream.
func splitBlock(block []byte) []byte {
	var lits, cmds []byte
	i := 0
	for i < len(block) {
		token := block[i]
		cmds = append(cmds, token)
		i++

		litLen := int(token >> 4)
		if litLen == 15 {
			for {
				b := block[i]
				cmds = append(cmds, b)
				i++
				litLen += int(b)
				if b != 0xff {
					break
				}
			}
		}
		lits = append(lits, block[i:i+litLen]...)
		i += litLen
		if i == len(block) {
			break
		}

		cmds = append(cmds, block[i], block[i+1])
		i += 2
		if token&0x0f == 15 {
			for {
				b := block[i]
				cmds = append(cmds, b)
				i++
				if b != 0xff {
					break
				}
			}
		}
	}

	section := lits
	if enc, _, err := huff0.Compress1X(lits, &huff0.Scratch{}); err == nil && len(enc) < len(lits) {
		section = append([]byte(nil), enc...)
	}

	out := make([]byte, 0, 6+len(section)+len(cmds))
	out = appendU24(out, len(lits))
	out = appendU24(out, len(section))
	out = append(out, section...)
	return append(out, cmds...)
}

func appendU24(b []byte, n int) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n)) //nolint:gosec // chunk sizes fit in 24 bits
	return append(b, tmp[:3]...)
}

func isFill(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b[1:] {
		if c != b[0] {
			return false
		}
	}
	return true
}

// CompressibleBytes returns n bytes of repetitive text that LZ-compresses well.
func CompressibleBytes(n int) []byte {
	const phrase = "the quick brown fox jumps over the lazy dog; "
	out := make([]byte, n)
	for i := range out {
		out[i] = phrase[(i*7/5)%len(phrase)]
	}
	return out
}
