// Package mesh decodes BMD6 model resources into per-part geometry and
// writes each part as a standalone interchange file.
//
// A model is a list of parts. Each part owns its vertices, triangles, and
// material name, and parts are never merged: writers produce one artifact per
// part, in the order the parts appear. Coordinates are passed through
// unchanged unless a writer option asks for a transform.
package mesh

import "github.com/meigma/idcl/internal/restype"

// Format constants.
const (
	// Magic is the four-byte signature of a BMD6 model.
	Magic = "BMD6"

	// Version is the only supported format version.
	Version = 1

	headerSize     = 8
	partHeaderSize = 12
)

// Sentinel errors, re-exported for callers that only import this package.
var (
	ErrBadMagic           = restype.ErrBadMagic
	ErrUnsupportedVersion = restype.ErrUnsupportedVersion
	ErrCorruptMesh        = restype.ErrCorruptMesh
	ErrIndexOutOfRange    = restype.ErrIndexOutOfRange
)

// Flags describe which vertex attributes a part carries.
type Flags uint16

// Part flags.
const (
	FlagNormals Flags = 1 << iota
	FlagUVs
	FlagSkin
	FlagWideIndices

	knownFlags = FlagNormals | FlagUVs | FlagSkin | FlagWideIndices
)

// stride returns the size of one interleaved vertex.
func (f Flags) stride() int {
	n := 12
	if f&FlagNormals != 0 {
		n += 12
	}
	if f&FlagUVs != 0 {
		n += 8
	}
	if f&FlagSkin != 0 {
		n += 20
	}
	return n
}

func (f Flags) indexSize() int {
	if f&FlagWideIndices != 0 {
		return 4
	}
	return 2
}

// Part is one independently renderable piece of a model.
//
// Attribute slices are parallel: element i of Normals, UVs, Joints, and
// Weights belongs to Positions[i]. Optional attributes are nil when absent.
type Part struct {
	// Index is the part's position in the model, starting at 0.
	Index int

	// Material is the material name stored with the part. May be empty.
	Material string

	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Joints    [][4]uint8
	Weights   [][4]float32

	// Triangles index into Positions. Every index is below VertexCount().
	Triangles [][3]uint32
}

// VertexCount returns the number of vertices.
func (p *Part) VertexCount() int {
	return len(p.Positions)
}

// TriangleCount returns the number of triangles.
func (p *Part) TriangleCount() int {
	return len(p.Triangles)
}

// Model is a fully decoded BMD6 model.
type Model struct {
	Parts []*Part
}
