package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes one part as a Wavefront OBJ document.
//
// Faces reference 1-based vertex, texture, and normal indices; attributes a
// part does not carry are omitted from the face records.
func WriteOBJ(w io.Writer, p *Part, opts ...WriteOption) error {
	c := newWriteConfig(p, opts)
	p = c.prepare(p)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", c.name)
	fmt.Fprintf(bw, "# vertices: %d triangles: %d\n", p.VertexCount(), p.TriangleCount())
	fmt.Fprintf(bw, "o %s\n", c.name)
	if p.Material != "" {
		fmt.Fprintf(bw, "usemtl %s\n", p.Material)
	}

	for _, v := range p.Positions {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", v[0], v[1], v[2])
	}
	for _, uv := range p.UVs {
		fmt.Fprintf(bw, "vt %.6f %.6f\n", uv[0], uv[1])
	}
	for _, n := range p.Normals {
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", n[0], n[1], n[2])
	}

	face := faceFormat(p.UVs != nil, p.Normals != nil)
	for _, t := range p.Triangles {
		bw.WriteString("f")
		for _, idx := range t {
			face(bw, idx+1)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func faceFormat(uvs, normals bool) func(*bufio.Writer, uint32) {
	switch {
	case uvs && normals:
		return func(w *bufio.Writer, i uint32) { fmt.Fprintf(w, " %d/%d/%d", i, i, i) }
	case uvs:
		return func(w *bufio.Writer, i uint32) { fmt.Fprintf(w, " %d/%d", i, i) }
	case normals:
		return func(w *bufio.Writer, i uint32) { fmt.Fprintf(w, " %d//%d", i, i) }
	default:
		return func(w *bufio.Writer, i uint32) { fmt.Fprintf(w, " %d", i) }
	}
}
