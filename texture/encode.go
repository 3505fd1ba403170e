package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encoding selects the raster file format written for decoded images.
type Encoding int

// Supported encodings.
const (
	PNG Encoding = iota
	BMP
	TIFF
)

// Ext returns the file extension for e, without the dot.
func (e Encoding) Ext() string {
	switch e {
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return "png"
	}
}

func (e Encoding) String() string {
	return e.Ext()
}

// ParseEncoding maps a name such as "png" or "tif" to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png", "":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return PNG, fmt.Errorf("unknown image encoding %q", s)
}

// Encode writes img to w in encoding e.
func Encode(w io.Writer, img image.Image, e Encoding) error {
	switch e {
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}
