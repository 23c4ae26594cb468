package fatbin

import "errors"

// ErrSizeMismatch is returned when a decompressed section's length does
// not equal its declared uncompressed size.
var ErrSizeMismatch = errors.New("fatbin: decompressed size mismatch")

// Decompress decodes one compressed fat-binary section.
//
// The scheme is a token stream: each token starts with a control byte
// whose high nibble gives a literal-run length L (when it is 15, extended
// by adding a chain of trailing bytes that continues while each byte is
// 0xFF and ends with the first byte that is not) and whose low nibble
// gives a match-run length M-4 (extended the same way when it is 15). L literal bytes are
// copied verbatim, then a 16-bit little-endian back-offset selects where
// the M-byte match run is copied from. When M exceeds the back-offset the
// copy must proceed byte by byte so that the bytes just emitted feed back
// into the run (run-length behaviour); otherwise a plain block copy is
// correct.
//
// Decompress never reads past len(input) and never writes past
// uncompressedSize bytes of output. It returns ErrSizeMismatch if the
// token stream ends with fewer or more bytes than uncompressedSize.
func Decompress(input []byte, uncompressedSize int) ([]byte, error) {
	out := make([]byte, uncompressedSize)
	ipos, opos := 0, 0

	for ipos < len(input) {
		control := input[ipos]
		literalLen := int(control>>4) & 0xf
		matchLen := 4 + int(control&0xf)
		ipos++

		if literalLen == 0xf {
			for {
				if ipos >= len(input) {
					return nil, ErrSizeMismatch
				}
				b := input[ipos]
				ipos++
				literalLen += int(b)
				if b != 0xff {
					break
				}
			}
		}

		if literalLen > 0 {
			if ipos+literalLen > len(input) || opos+literalLen > len(out) {
				return nil, ErrSizeMismatch
			}
			copy(out[opos:opos+literalLen], input[ipos:ipos+literalLen])
			ipos += literalLen
			opos += literalLen
		}

		if ipos >= len(input) || opos >= len(out) {
			break
		}

		if ipos+2 > len(input) {
			return nil, ErrSizeMismatch
		}
		backOffset := int(input[ipos]) | int(input[ipos+1])<<8
		ipos += 2

		if matchLen == 19 {
			for {
				if ipos >= len(input) {
					return nil, ErrSizeMismatch
				}
				b := input[ipos]
				ipos++
				matchLen += int(b)
				if b != 0xff {
					break
				}
			}
		}

		if backOffset <= 0 || backOffset > opos || opos+matchLen > len(out) {
			return nil, ErrSizeMismatch
		}

		src := opos - backOffset
		if matchLen <= backOffset {
			copy(out[opos:opos+matchLen], out[src:src+matchLen])
		} else {
			for i := 0; i < matchLen; i++ {
				out[opos+i] = out[src+i]
			}
		}
		opos += matchLen
	}

	if opos != uncompressedSize {
		return nil, ErrSizeMismatch
	}
	return out, nil
}
