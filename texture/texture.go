// Package texture decodes BIMG image resources into RGBA rasters and encodes
// them as PNG, BMP, or TIFF.
//
// A BIMG resource holds one or more mip levels of a single pixel format.
// Uncompressed formats are copied, block-compressed formats (BC1, BC3, BC4,
// BC5) are expanded texel by texel. Every level decodes to an *image.NRGBA
// with the level's exact dimensions.
package texture

import (
	"fmt"
	"image"

	"github.com/meigma/idcl/internal/restype"
)

// Magic is the four-byte signature of a BIMG resource.
const Magic = "BIMG"

// HeaderSize is the size of the fixed BIMG header.
const HeaderSize = 16

// Sentinel errors, re-exported for callers that only import this package.
var (
	ErrBadMagic               = restype.ErrBadMagic
	ErrUnsupportedPixelFormat = restype.ErrUnsupportedPixelFormat
	ErrCorruptImage           = restype.ErrCorruptImage
)

// Format identifies how texels are stored.
type Format uint16

// Pixel formats.
const (
	FormatRGBA8 Format = iota
	FormatBGRA8
	FormatBC1
	FormatBC3
	FormatBC4
	FormatBC5
)

var formatNames = [...]string{"rgba8", "bgra8", "bc1", "bc3", "bc4", "bc5"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint16(f))
}

// Compressed reports whether f stores 4x4 texel blocks.
func (f Format) Compressed() bool {
	return f >= FormatBC1 && f <= FormatBC5
}

// blockBytes is the encoded size of one 4x4 block. Only valid for block
// formats.
func (f Format) blockBytes() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	default:
		return 16
	}
}

func (f Format) valid() bool {
	return int(f) < len(formatNames)
}

// LevelSize returns the number of bytes a w x h level occupies in format f.
func (f Format) LevelSize(w, h int) int {
	if f.Compressed() {
		return ((w + 3) / 4) * ((h + 3) / 4) * f.blockBytes()
	}
	return w * h * 4
}

// Header is the fixed part of a BIMG resource.
type Header struct {
	Width  int
	Height int
	Format Format
	Mips   int
}

// MipDims returns the dimensions of mip level k.
func (h Header) MipDims(k int) (int, int) {
	return max(1, h.Width>>k), max(1, h.Height>>k)
}

// Texture is a decoded BIMG resource. Levels[0] is the base image.
type Texture struct {
	Header
	Levels []*image.NRGBA
}

// Base returns the full-resolution level.
func (t *Texture) Base() *image.NRGBA {
	return t.Levels[0]
}
