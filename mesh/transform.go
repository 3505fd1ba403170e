package mesh

import "math"

// WriteOption configures OBJ and GLB output.
type WriteOption func(*writeConfig)

type writeConfig struct {
	name          string
	rotateX       bool
	flipV         bool
	flipWinding   bool
	smoothNormals bool
}

// WithName sets the object name written into the output.
func WithName(name string) WriteOption {
	return func(c *writeConfig) {
		c.name = name
	}
}

// WithRotateX rotates positions and normals by -90 degrees about X,
// converting Z-up data to Y-up.
func WithRotateX() WriteOption {
	return func(c *writeConfig) {
		c.rotateX = true
	}
}

// WithFlipV replaces each texture coordinate v with 1-v.
func WithFlipV() WriteOption {
	return func(c *writeConfig) {
		c.flipV = true
	}
}

// WithFlipWinding reverses the vertex order of every triangle.
func WithFlipWinding() WriteOption {
	return func(c *writeConfig) {
		c.flipWinding = true
	}
}

// WithSmoothNormals computes area-weighted vertex normals for parts that
// carry none.
func WithSmoothNormals() WriteOption {
	return func(c *writeConfig) {
		c.smoothNormals = true
	}
}

func newWriteConfig(p *Part, opts []WriteOption) writeConfig {
	c := writeConfig{name: "part"}
	if p.Material != "" {
		c.name = p.Material
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// prepare returns the part as it should be written. The input is not
// modified; a copy is made only when a transform applies. Smooth normals are
// computed last, from the transformed positions and winding.
func (c writeConfig) prepare(p *Part) *Part {
	if !c.rotateX && !c.flipV && !c.flipWinding && !(c.smoothNormals && p.Normals == nil) {
		return p
	}
	out := *p
	if c.rotateX {
		out.Positions = rotate(p.Positions)
		if p.Normals != nil {
			out.Normals = rotate(p.Normals)
		}
	}
	if c.flipV && p.UVs != nil {
		out.UVs = make([][2]float32, len(p.UVs))
		for i, uv := range p.UVs {
			out.UVs[i] = [2]float32{uv[0], 1 - uv[1]}
		}
	}
	if c.flipWinding {
		out.Triangles = make([][3]uint32, len(p.Triangles))
		for i, t := range p.Triangles {
			out.Triangles[i] = [3]uint32{t[0], t[2], t[1]}
		}
	}
	if c.smoothNormals && p.Normals == nil {
		out.Normals = SmoothNormals(&out)
	}
	return &out
}

// rotate applies a -90 degree rotation about X: (x, y, z) -> (x, z, -y).
func rotate(vs [][3]float32) [][3]float32 {
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = [3]float32{v[0], v[2], -v[1]}
	}
	return out
}

// SmoothNormals returns unit vertex normals averaged from the area-weighted
// normals of adjacent triangles. Vertices without a non-degenerate triangle
// get (0, 0, 1).
func SmoothNormals(p *Part) [][3]float32 {
	acc := make([][3]float64, len(p.Positions))
	for _, t := range p.Triangles {
		a, b, c := p.Positions[t[0]], p.Positions[t[1]], p.Positions[t[2]]
		e1 := [3]float64{float64(b[0] - a[0]), float64(b[1] - a[1]), float64(b[2] - a[2])}
		e2 := [3]float64{float64(c[0] - a[0]), float64(c[1] - a[1]), float64(c[2] - a[2])}
		n := [3]float64{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, v := range t {
			acc[v][0] += n[0]
			acc[v][1] += n[1]
			acc[v][2] += n[2]
		}
	}

	out := make([][3]float32, len(acc))
	for i, n := range acc {
		l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l == 0 {
			out[i] = [3]float32{0, 0, 1}
			continue
		}
		out[i] = [3]float32{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
	}
	return out
}
