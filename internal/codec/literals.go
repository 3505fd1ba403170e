package codec

import (
	"github.com/klauspost/compress/huff0"
)

const literalHeaderSize = 6

// splitLiterals separates a split chunk into its literal bytes and command
// stream. The literal section is stored when its encoded and raw lengths are
// equal and is a huff0 1X block otherwise.
func splitLiterals(payload []byte, maxLiterals int) (lits, cmds []byte, err error) {
	if len(payload) < literalHeaderSize {
		return nil, nil, corrupt("split chunk header truncated")
	}
	rawLen := u24(payload)
	encLen := u24(payload[3:])
	payload = payload[literalHeaderSize:]

	if rawLen > maxLiterals {
		return nil, nil, corrupt("%d literals exceed chunk size %d", rawLen, maxLiterals)
	}
	if encLen > len(payload) {
		return nil, nil, corrupt("literal section of %d bytes exceeds payload", encLen)
	}
	section, cmds := payload[:encLen], payload[encLen:]
	if encLen == rawLen {
		return section, cmds, nil
	}
	if rawLen == 0 {
		return nil, nil, corrupt("encoded literals with zero length")
	}

	s, remain, err := huff0.ReadTable(section, nil)
	if err != nil {
		return nil, nil, corrupt("literal table: %v", err)
	}
	lits, err = s.Decoder().Decompress1X(make([]byte, 0, rawLen), remain)
	if err != nil {
		return nil, nil, corrupt("literals: %v", err)
	}
	if len(lits) != rawLen {
		return nil, nil, corrupt("decoded %d literals, want %d", len(lits), rawLen)
	}
	return lits, cmds, nil
}
