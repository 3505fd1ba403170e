package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl/internal/testutil"
)

func TestDecodeTwoParts(t *testing.T) {
	t.Parallel()

	data := testutil.BuildMesh(testutil.Quad("stone"), testutil.Pyramid("metal"))

	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Parts, 2)

	quad := m.Parts[0]
	assert.Equal(t, 0, quad.Index)
	assert.Equal(t, "stone", quad.Material)
	assert.Equal(t, 4, quad.VertexCount())
	assert.Equal(t, 2, quad.TriangleCount())
	assert.Equal(t, [3]float32{1, 1, 0}, quad.Positions[2])
	assert.Equal(t, [2]float32{0, 1}, quad.UVs[3])
	assert.Len(t, quad.Normals, 4)
	assert.Equal(t, [3]uint32{0, 2, 3}, quad.Triangles[1])

	pyr := m.Parts[1]
	assert.Equal(t, 1, pyr.Index)
	assert.Equal(t, 6, pyr.VertexCount())
	assert.Equal(t, 4, pyr.TriangleCount())
	assert.Nil(t, pyr.Normals)
	assert.Nil(t, pyr.UVs)

	for _, p := range m.Parts {
		for _, tri := range p.Triangles {
			for _, idx := range tri {
				assert.Less(t, int(idx), p.VertexCount())
			}
		}
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	t.Parallel()

	data := testutil.BuildMesh(testutil.Quad("a"), testutil.Pyramid("b"))
	first, err := Decode(data)
	require.NoError(t, err)
	second, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeSkinnedWideIndices(t *testing.T) {
	t.Parallel()

	part := testutil.Quad("skin")
	part.Wide = true
	part.Joints = [][4]uint8{{0, 1, 0, 0}, {1, 0, 0, 0}, {2, 0, 0, 0}, {3, 1, 0, 0}}
	part.Weights = [][4]float32{{0.5, 0.5, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}, {0.25, 0.75, 0, 0}}

	m, err := Decode(testutil.BuildMesh(part))
	require.NoError(t, err)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, part.Joints, m.Parts[0].Joints)
	assert.Equal(t, part.Weights, m.Parts[0].Weights)
	assert.Equal(t, [3]uint32{0, 1, 2}, m.Parts[0].Triangles[0])
}

func TestDecodeEmptyModel(t *testing.T) {
	t.Parallel()

	m, err := Decode(testutil.BuildMesh())
	require.NoError(t, err)
	assert.Empty(t, m.Parts)
}

func TestDecodeIndexOutOfRange(t *testing.T) {
	t.Parallel()

	part := testutil.Quad("bad")
	part.Indices[4] = 4 // equal to the vertex count
	_, err := Decode(testutil.BuildMesh(part))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	valid := testutil.BuildMesh(testutil.Quad("m"))

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 2

	badFlags := append([]byte(nil), valid...)
	badFlags[8+8] |= 0x80

	notTriangles := testutil.Quad("m")
	notTriangles.Indices = notTriangles.Indices[:4]

	tooManyVertices := testutil.Quad("m")
	tooManyVertices.VertexCount = 1000

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", []byte("XXXX\x01\x00\x01\x00"), ErrBadMagic},
		{"too short", []byte("BM"), ErrBadMagic},
		{"header truncated", []byte("BMD6\x01"), ErrCorruptMesh},
		{"unsupported version", badVersion, ErrUnsupportedVersion},
		{"unknown flags", badFlags, ErrCorruptMesh},
		{"index count not multiple of three", testutil.BuildMesh(notTriangles), ErrCorruptMesh},
		{"vertex buffer overruns", testutil.BuildMesh(tooManyVertices), ErrCorruptMesh},
		{"index buffer truncated", valid[:len(valid)-1], ErrCorruptMesh},
		{"trailing bytes", append(append([]byte(nil), valid...), 0), ErrCorruptMesh},
		{"missing part", valid[:headerSize], ErrCorruptMesh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPartsIsLazyAndRestartable(t *testing.T) {
	t.Parallel()

	good := testutil.Quad("first")
	bad := testutil.Pyramid("second")
	bad.Indices[0] = 99
	seq := Parts(testutil.BuildMesh(good, bad))

	for range 2 {
		var parts []*Part
		var errs []error
		for p, err := range seq {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			parts = append(parts, p)
		}
		require.Len(t, parts, 1)
		assert.Equal(t, "first", parts[0].Material)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrIndexOutOfRange)
	}

	// Stopping early does not decode the remaining parts.
	for p, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, 0, p.Index)
		break
	}
}
