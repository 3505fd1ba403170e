package mesh

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// WriteGLB writes one part as a binary glTF document with a single mesh,
// node, and material.
func WriteGLB(w io.Writer, p *Part, opts ...WriteOption) error {
	c := newWriteConfig(p, opts)
	p = c.prepare(p)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "idcl"

	indices := make([]uint32, 0, 3*len(p.Triangles))
	for _, t := range p.Triangles {
		indices = append(indices, t[0], t[1], t[2])
	}

	posAccessor := modeler.WritePosition(doc, p.Positions)
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
		},
		Material: gltf.Index(0),
	}
	if p.Normals != nil {
		prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(doc, p.Normals)
	}
	if p.UVs != nil {
		prim.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, p.UVs)
	}
	if len(indices) > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{Name: p.Material, PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	doc.Meshes = []*gltf.Mesh{{Name: c.name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: c.name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
