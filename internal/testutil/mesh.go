package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
)

// MeshPart describes one part written by BuildMesh.
type MeshPart struct {
	Material  string
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Joints    [][4]uint8
	Weights   [][4]float32
	Indices   []uint32
	Wide      bool

	// VertexCount overrides the declared vertex count when non-zero.
	VertexCount uint32
}

// BuildMesh serializes parts as a BMD6 mesh.
func BuildMesh(parts ...MeshPart) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("BMD6")
	_ = binary.Write(&b, le, uint16(1))
	_ = binary.Write(&b, le, uint16(len(parts))) //nolint:gosec // test fixture sizes

	for _, p := range parts {
		var flags uint16
		if p.Normals != nil {
			flags |= 1
		}
		if p.UVs != nil {
			flags |= 2
		}
		if p.Joints != nil {
			flags |= 4
		}
		if p.Wide {
			flags |= 8
		}
		vc := uint32(len(p.Positions)) //nolint:gosec // test fixture sizes
		if p.VertexCount != 0 {
			vc = p.VertexCount
		}
		_ = binary.Write(&b, le, vc)
		_ = binary.Write(&b, le, uint32(len(p.Indices))) //nolint:gosec // test fixture sizes
		_ = binary.Write(&b, le, flags)
		_ = binary.Write(&b, le, uint16(len(p.Material))) //nolint:gosec // test fixture sizes
		b.WriteString(p.Material)

		for i, pos := range p.Positions {
			writeFloats(&b, pos[:])
			if p.Normals != nil {
				writeFloats(&b, p.Normals[i][:])
			}
			if p.UVs != nil {
				writeFloats(&b, p.UVs[i][:])
			}
			if p.Joints != nil {
				b.Write(p.Joints[i][:])
				writeFloats(&b, p.Weights[i][:])
			}
		}
		for _, idx := range p.Indices {
			if p.Wide {
				_ = binary.Write(&b, le, idx)
			} else {
				_ = binary.Write(&b, le, uint16(idx)) //nolint:gosec // test fixture sizes
			}
		}
	}
	return b.Bytes()
}

func writeFloats(b *bytes.Buffer, fs []float32) {
	var tmp [4]byte
	for _, f := range fs {
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(f))
		b.Write(tmp[:])
	}
}

// Quad returns a part with 4 vertices and 2 triangles in the XY plane.
func Quad(material string) MeshPart {
	return MeshPart{
		Material:  material,
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Pyramid returns a part with 6 vertices and 4 triangles and no normals.
func Pyramid(material string) MeshPart {
	return MeshPart{
		Material: material,
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}, {0.5, 1, 0.5}, {0.5, -1, 0.5},
		},
		Indices: []uint32{0, 1, 4, 1, 2, 4, 2, 3, 4, 3, 0, 5},
	}
}
