package texture

import (
	"encoding/binary"
	"image"
	"math"
)

// block holds the 16 decoded texels of one 4x4 block in row-major order.
type block [16][4]uint8

type blockDecoder func(src []byte, out *block)

// decodeBlocks walks src as a grid of 4x4 blocks and writes the texels that
// fall inside img. Texels past the right or bottom edge are dropped.
func decodeBlocks(img *image.NRGBA, src []byte, size int, dec blockDecoder) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := (w+3)/4, (h+3)/4

	var b block
	off := 0
	for by := range bh {
		for bx := range bw {
			dec(src[off:off+size], &b)
			off += size
			for py := range 4 {
				y := by*4 + py
				if y >= h {
					break
				}
				for px := range 4 {
					x := bx*4 + px
					if x >= w {
						break
					}
					copy(img.Pix[img.PixOffset(x, y):], b[py*4+px][:])
				}
			}
		}
	}
}

// rgb565 expands a packed 5:6:5 color to 8 bits per channel.
func rgb565(c uint16) [3]uint8 {
	r := uint8(c>>11) & 0x1f
	g := uint8(c>>5) & 0x3f
	b := uint8(c) & 0x1f
	return [3]uint8{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// colorPalette builds the four-entry palette of a color block. When
// fourColor is false and c0 <= c1 the block uses three colors plus
// transparent black.
func colorPalette(c0, c1 uint16, fourColor bool) [4][4]uint8 {
	a, b := rgb565(c0), rgb565(c1)
	var p [4][4]uint8
	p[0] = [4]uint8{a[0], a[1], a[2], 255}
	p[1] = [4]uint8{b[0], b[1], b[2], 255}
	if fourColor || c0 > c1 {
		for i := range 3 {
			p[2][i] = uint8((2*int(a[i]) + int(b[i])) / 3)
			p[3][i] = uint8((int(a[i]) + 2*int(b[i])) / 3)
		}
		p[2][3], p[3][3] = 255, 255
		return p
	}
	for i := range 3 {
		p[2][i] = uint8((int(a[i]) + int(b[i])) / 2)
	}
	p[2][3] = 255
	return p
}

// decodeColor decodes an 8-byte color block into out, leaving alpha as the
// palette defines it.
func decodeColor(src []byte, out *block, fourColor bool) {
	c0 := binary.LittleEndian.Uint16(src[0:])
	c1 := binary.LittleEndian.Uint16(src[2:])
	indices := binary.LittleEndian.Uint32(src[4:])
	p := colorPalette(c0, c1, fourColor)
	for i := range 16 {
		out[i] = p[(indices>>(2*i))&0x3]
	}
}

// alphaPalette builds the eight-entry palette of a BC3/BC4 channel block.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	p := [8]uint8{a0, a1}
	x, y := int(a0), int(a1)
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			p[i+1] = uint8(((7-i)*x + i*y) / 7)
		}
		return p
	}
	for i := 1; i <= 4; i++ {
		p[i+1] = uint8(((5-i)*x + i*y) / 5)
	}
	p[6], p[7] = 0, 255
	return p
}

// decodeChannel decodes an 8-byte single-channel block into 16 values.
func decodeChannel(src []byte) [16]uint8 {
	p := alphaPalette(src[0], src[1])
	var bits uint64
	for i := range 6 {
		bits |= uint64(src[2+i]) << (8 * i)
	}
	var out [16]uint8
	for i := range out {
		out[i] = p[(bits>>(3*i))&0x7]
	}
	return out
}

func decodeBC1(src []byte, out *block) {
	decodeColor(src, out, false)
}

func decodeBC3(src []byte, out *block) {
	alpha := decodeChannel(src[:8])
	decodeColor(src[8:], out, true)
	for i := range out {
		out[i][3] = alpha[i]
	}
}

func decodeBC4(src []byte, out *block) {
	v := decodeChannel(src)
	for i := range out {
		out[i] = [4]uint8{v[i], v[i], v[i], 255}
	}
}

// decodeBC5 decodes a two-channel normal map block and rebuilds Z in the
// blue channel.
func decodeBC5(src []byte, out *block) {
	r := decodeChannel(src[:8])
	g := decodeChannel(src[8:])
	for i := range out {
		out[i] = [4]uint8{r[i], g[i], normalZ(r[i], g[i]), 255}
	}
}

// normalZ returns the unit-length Z component for a normal whose X and Y are
// stored as unsigned bytes, re-encoded to [0, 255].
func normalZ(r, g uint8) uint8 {
	x := float64(r)/127.5 - 1
	y := float64(g)/127.5 - 1
	z := math.Sqrt(max(0, 1-x*x-y*y))
	return uint8(math.Round((z + 1) * 127.5))
}
