package codec

const (
	minMatch     = 4
	lengthEscape = 15
)

// decodeSequences decodes LZ sequences into dst[pos:end].
//
// Each sequence is a token (literal count in the high nibble, match length
// minus 4 in the low nibble), optional 255-run length extensions, the
// literals, and a little-endian uint16 match offset. The final sequence
// carries literals only. With split set, literal bytes come from lits
// instead of the command stream, and all of them must be used.
//
// Match offsets are measured from the current output position and may reach
// into earlier chunks of the same stream.
func decodeSequences(dst []byte, pos, end int, src, lits []byte, split bool) error {
	si, li := 0, 0
	for {
		if si == len(src) {
			return finish(pos, end, li, len(lits))
		}
		token := src[si]
		si++

		litLen := int(token >> 4)
		if litLen == lengthEscape {
			n, next, err := readLength(src, si)
			if err != nil {
				return err
			}
			litLen += n
			si = next
		}
		if litLen > end-pos {
			return corrupt("%d literals overrun chunk end", litLen)
		}
		if split {
			if litLen > len(lits)-li {
				return corrupt("literal stream exhausted at %d", li)
			}
			copy(dst[pos:], lits[li:li+litLen])
			li += litLen
		} else {
			if litLen > len(src)-si {
				return corrupt("truncated literals at %d", si)
			}
			copy(dst[pos:], src[si:si+litLen])
			si += litLen
		}
		pos += litLen

		if si == len(src) {
			return finish(pos, end, li, len(lits))
		}

		if len(src)-si < 2 {
			return corrupt("truncated match offset at %d", si)
		}
		offset := int(src[si]) | int(src[si+1])<<8
		si += 2
		if offset == 0 || offset > pos {
			return corrupt("match offset %d at output %d", offset, pos)
		}

		matchLen := int(token & 0x0f)
		if matchLen == lengthEscape {
			n, next, err := readLength(src, si)
			if err != nil {
				return err
			}
			matchLen += n
			si = next
		}
		matchLen += minMatch
		if matchLen > end-pos {
			return corrupt("match of %d bytes overruns chunk end", matchLen)
		}
		copyMatch(dst, pos, offset, matchLen)
		pos += matchLen
	}
}

func finish(pos, end, used, lits int) error {
	if pos != end {
		return corrupt("sequences end at %d, want %d", pos, end)
	}
	if used != lits {
		return corrupt("%d unused literals", lits-used)
	}
	return nil
}

// readLength reads a 255-run length extension starting at si.
func readLength(src []byte, si int) (n, next int, err error) {
	for {
		if si >= len(src) {
			return 0, 0, corrupt("truncated length at %d", si)
		}
		b := src[si]
		si++
		n += int(b)
		if n > ChunkSize {
			return 0, 0, corrupt("length %d exceeds chunk size", n)
		}
		if b != 0xff {
			return n, si, nil
		}
	}
}

// copyMatch copies length bytes from offset bytes back. Overlapping matches
// repeat the trailing pattern.
func copyMatch(dst []byte, pos, offset, length int) {
	from := pos - offset
	if offset >= length {
		copy(dst[pos:pos+length], dst[from:from+length])
		return
	}
	for i := range length {
		dst[pos+i] = dst[from+i]
	}
}
