package dispatch

import (
	"context"
	"io"

	"github.com/meigma/idcl/mesh"
	"github.com/meigma/idcl/texture"
)

func writeRaw(_ context.Context, asset *Asset, out *Emitter) (Status, error) {
	if err := out.Bytes(RawPath(asset.Entry.Name), asset.Data); err != nil {
		return StatusFailed, err
	}
	return StatusSucceeded, nil
}

func writePassthrough(ctx context.Context, asset *Asset, out *Emitter) (Status, error) {
	if _, err := writeRaw(ctx, asset, out); err != nil {
		return StatusFailed, err
	}
	return StatusPassthrough, nil
}

// handleMesh decodes the whole model before writing, so a corrupt part
// leaves no artifacts behind.
func (d *Dispatcher) handleMesh(_ context.Context, asset *Asset, out *Emitter) (Status, error) {
	model, err := mesh.Decode(asset.Data)
	if err != nil {
		return StatusFailed, err
	}

	for _, part := range model.Parts {
		for _, f := range d.meshFormat.formats() {
			p := MeshPartPath(asset.Entry.Name, part.Index+1, f.Ext())
			_, name := stem(p)
			opts := append([]mesh.WriteOption{mesh.WithName(name)}, d.meshOpts...)
			err := out.Write(p, func(w io.Writer) error {
				if f == MeshGLB {
					return mesh.WriteGLB(w, part, opts...)
				}
				return mesh.WriteOBJ(w, part, opts...)
			})
			if err != nil {
				return StatusFailed, err
			}
		}
	}
	return StatusSucceeded, nil
}

func (d *Dispatcher) handleImage(_ context.Context, asset *Asset, out *Emitter) (Status, error) {
	decode := texture.DecodeBase
	if d.allMips {
		decode = texture.Decode
	}
	tex, err := decode(asset.Data)
	if err != nil {
		return StatusFailed, err
	}

	ext := d.imageEnc.Ext()
	for k, level := range tex.Levels {
		err := out.Write(ImagePath(asset.Entry.Name, k, ext), func(w io.Writer) error {
			return texture.Encode(w, level, d.imageEnc)
		})
		if err != nil {
			return StatusFailed, err
		}
	}
	return StatusSucceeded, nil
}
