package mesh

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/meigma/idcl/internal/sizing"
)

// Decode decodes every part of a model.
// Decoding the same bytes twice yields equal models.
func Decode(data []byte) (*Model, error) {
	m := &Model{}
	for part, err := range Parts(data) {
		if err != nil {
			return nil, err
		}
		m.Parts = append(m.Parts, part)
	}
	return m, nil
}

// Parts returns a lazy, finite sequence of the model's parts.
//
// Parts are decoded one at a time as the sequence is consumed. The first
// error is yielded with a nil part and ends the sequence. The sequence may be
// iterated again from the start.
func Parts(data []byte) iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		count, err := parseHeader(data)
		if err != nil {
			yield(nil, err)
			return
		}
		off := headerSize
		for i := range count {
			part, next, err := decodePart(data, off, i)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(part, nil) {
				return
			}
			off = next
		}
		if off != len(data) {
			yield(nil, fmt.Errorf("%w: %d trailing bytes after last part", ErrCorruptMesh, len(data)-off))
		}
	}
}

func parseHeader(data []byte) (int, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return 0, fmt.Errorf("%w: not a %s model", ErrBadMagic, Magic)
	}
	if len(data) < headerSize {
		return 0, fmt.Errorf("%w: header truncated", ErrCorruptMesh)
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return 0, fmt.Errorf("%w: mesh version %d", ErrUnsupportedVersion, v)
	}
	return int(binary.LittleEndian.Uint16(data[6:])), nil
}

// decodePart decodes the part starting at off and returns the offset of the
// next part.
func decodePart(data []byte, off, index int) (*Part, int, error) {
	fail := func(format string, args ...any) (*Part, int, error) {
		return nil, 0, fmt.Errorf("part %d: %w: "+format, append([]any{index, ErrCorruptMesh}, args...)...)
	}

	le := binary.LittleEndian
	if len(data)-off < partHeaderSize {
		return fail("header truncated")
	}
	vertexCount := le.Uint32(data[off:])
	indexCount := le.Uint32(data[off+4:])
	flags := Flags(le.Uint16(data[off+8:]))
	materialLen := int(le.Uint16(data[off+10:]))
	off += partHeaderSize

	if flags&^knownFlags != 0 {
		return fail("unknown flags %#x", uint16(flags))
	}
	if indexCount%3 != 0 {
		return fail("index count %d is not a multiple of 3", indexCount)
	}
	if materialLen > len(data)-off {
		return fail("material name truncated")
	}
	material := string(data[off : off+materialLen])
	off += materialLen

	remaining := uint64(len(data) - off)
	vertexBytes, ok := sizing.MulUint64(uint64(vertexCount), uint64(flags.stride()))
	if !ok || vertexBytes > remaining {
		return fail("%d vertices need %d bytes, %d remain", vertexCount, vertexBytes, remaining)
	}
	indexBytes, ok := sizing.MulUint64(uint64(indexCount), uint64(flags.indexSize()))
	if !ok || indexBytes > remaining-vertexBytes {
		return fail("%d indices need %d bytes, %d remain", indexCount, indexBytes, remaining-vertexBytes)
	}

	p := &Part{Index: index, Material: material}
	off = decodeVertices(p, data, off, int(vertexCount), flags)

	p.Triangles = make([][3]uint32, indexCount/3)
	wide := flags&FlagWideIndices != 0
	for t := range p.Triangles {
		for k := range 3 {
			var idx uint32
			if wide {
				idx = le.Uint32(data[off:])
				off += 4
			} else {
				idx = uint32(le.Uint16(data[off:]))
				off += 2
			}
			if idx >= vertexCount {
				return nil, 0, fmt.Errorf("part %d: %w: triangle %d references vertex %d of %d",
					index, ErrIndexOutOfRange, t, idx, vertexCount)
			}
			p.Triangles[t][k] = idx
		}
	}
	return p, off, nil
}

// decodeVertices reads n interleaved vertices into p. Bounds were checked by
// the caller.
func decodeVertices(p *Part, data []byte, off, n int, flags Flags) int {
	p.Positions = make([][3]float32, n)
	if flags&FlagNormals != 0 {
		p.Normals = make([][3]float32, n)
	}
	if flags&FlagUVs != 0 {
		p.UVs = make([][2]float32, n)
	}
	if flags&FlagSkin != 0 {
		p.Joints = make([][4]uint8, n)
		p.Weights = make([][4]float32, n)
	}

	for i := range n {
		off = readFloats(data, off, p.Positions[i][:])
		if p.Normals != nil {
			off = readFloats(data, off, p.Normals[i][:])
		}
		if p.UVs != nil {
			off = readFloats(data, off, p.UVs[i][:])
		}
		if p.Joints != nil {
			copy(p.Joints[i][:], data[off:off+4])
			off = readFloats(data, off+4, p.Weights[i][:])
		}
	}
	return off
}

func readFloats(data []byte, off int, dst []float32) int {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	return off
}
