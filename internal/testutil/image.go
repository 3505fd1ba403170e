package testutil

import (
	"bytes"
	"encoding/binary"
)

// BuildImage serializes a BIMG resource. Each level is written with its own
// length prefix, so callers can produce mismatched sizes on purpose.
func BuildImage(w, h uint32, format uint16, levels ...[]byte) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("BIMG")
	_ = binary.Write(&b, le, w)
	_ = binary.Write(&b, le, h)
	_ = binary.Write(&b, le, format)
	_ = binary.Write(&b, le, uint16(len(levels))) //nolint:gosec // test fixture sizes
	for _, l := range levels {
		_ = binary.Write(&b, le, uint32(len(l))) //nolint:gosec // test fixture sizes
		b.Write(l)
	}
	return b.Bytes()
}

// SolidBC1 returns n BC1 blocks that all decode to the 5:6:5 color c.
func SolidBC1(c uint16, n int) []byte {
	out := make([]byte, 0, 8*n)
	for range n {
		out = append(out, byte(c), byte(c>>8), byte(c), byte(c>>8), 0, 0, 0, 0)
	}
	return out
}

// RGBAPattern returns w*h RGBA texels where texel i is (i, 2i, 3i, 255)
// truncated to bytes.
func RGBAPattern(w, h int) []byte {
	out := make([]byte, 0, w*h*4)
	for i := range w * h {
		out = append(out, byte(i), byte(2*i), byte(3*i), 255)
	}
	return out
}
