package texture

import (
	"encoding/binary"
	"fmt"
	"image"
)

// ParseHeader validates and returns the BIMG header of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return Header{}, fmt.Errorf("%w: not a %s image", ErrBadMagic, Magic)
	}
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header truncated", ErrCorruptImage)
	}
	le := binary.LittleEndian
	w, h := le.Uint32(data[4:]), le.Uint32(data[8:])
	hdr := Header{
		Format: Format(le.Uint16(data[12:])),
		Mips:   int(le.Uint16(data[14:])),
	}
	if !hdr.Format.valid() {
		return Header{}, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, hdr.Format)
	}
	// 1<<15 keeps w*h*4 well inside int on every platform.
	if w == 0 || h == 0 || w > 1<<15 || h > 1<<15 {
		return Header{}, fmt.Errorf("%w: dimensions %dx%d", ErrCorruptImage, w, h)
	}
	if hdr.Mips == 0 {
		return Header{}, fmt.Errorf("%w: no mip levels", ErrCorruptImage)
	}
	hdr.Width, hdr.Height = int(w), int(h)
	return hdr, nil
}

// Decode decodes every mip level of a BIMG resource.
func Decode(data []byte) (*Texture, error) {
	return decode(data, -1)
}

// DecodeBase decodes only the base level. Later levels are not validated.
func DecodeBase(data []byte) (*Texture, error) {
	return decode(data, 1)
}

func decode(data []byte, limit int) (*Texture, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	levels := hdr.Mips
	if limit > 0 {
		levels = min(levels, limit)
	}

	t := &Texture{Header: hdr, Levels: make([]*image.NRGBA, 0, levels)}
	off := HeaderSize
	for k := range levels {
		w, h := hdr.MipDims(k)
		if len(data)-off < 4 {
			return nil, fmt.Errorf("%w: mip %d length truncated", ErrCorruptImage, k)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if want := hdr.Format.LevelSize(w, h); n != want {
			return nil, fmt.Errorf("%w: mip %d is %d bytes, %dx%d %s needs %d",
				ErrCorruptImage, k, n, w, h, hdr.Format, want)
		}
		if len(data)-off < n {
			return nil, fmt.Errorf("%w: mip %d truncated", ErrCorruptImage, k)
		}
		t.Levels = append(t.Levels, decodeLevel(hdr.Format, w, h, data[off:off+n]))
		off += n
	}
	if limit < 0 && off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptImage, len(data)-off)
	}
	return t, nil
}

// decodeLevel expands one level. The length of src was checked by the caller.
func decodeLevel(f Format, w, h int, src []byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	switch f {
	case FormatRGBA8:
		copy(img.Pix, src)
	case FormatBGRA8:
		for i := 0; i < len(src); i += 4 {
			img.Pix[i+0] = src[i+2]
			img.Pix[i+1] = src[i+1]
			img.Pix[i+2] = src[i+0]
			img.Pix[i+3] = src[i+3]
		}
	case FormatBC1:
		decodeBlocks(img, src, 8, decodeBC1)
	case FormatBC3:
		decodeBlocks(img, src, 16, decodeBC3)
	case FormatBC4:
		decodeBlocks(img, src, 8, decodeBC4)
	case FormatBC5:
		decodeBlocks(img, src, 16, decodeBC5)
	}
	return img
}
