package fatbin

import (
	"bytes"
	"testing"
)

// buildToken builds one control-byte + literal + back-offset + match token
// using the short (non-extended) nibble encoding.
func buildToken(literal []byte, backOffset uint16, matchLen int) []byte {
	if len(literal) > 14 {
		panic("test helper only supports short literal runs")
	}
	if matchLen-4 > 14 || matchLen < 4 {
		panic("test helper only supports short match runs")
	}
	control := byte(len(literal)<<4) | byte(matchLen-4)
	buf := []byte{control}
	buf = append(buf, literal...)
	buf = append(buf, byte(backOffset), byte(backOffset>>8))
	return buf
}

func TestDecompressLiteralOnly(t *testing.T) {
	// Control byte with L=5, M=4 (minimum), but input exhausted right
	// after the literal run so the match step never executes.
	input := []byte{0x50, 'h', 'e', 'l', 'l', 'o'}
	got, err := Decompress(input, 5)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("Decompress() = %q, want %q", got, "hello")
	}
}

func TestDecompressBlockCopy(t *testing.T) {
	// "abcd" literal, then a match of length 4 copying from 4 bytes back
	// (M == back_offset): exercises the non-RLE block-copy branch.
	tok := buildToken([]byte("abcd"), 4, 4)
	got, err := Decompress(tok, 8)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(got, []byte("abcdabcd")) {
		t.Fatalf("Decompress() = %q, want %q", got, "abcdabcd")
	}
}

func TestDecompressRLEPeriodicExtension(t *testing.T) {
	// "ab" literal (back_offset will be 2), then a match of length 9 with
	// back_offset 2: M (9) > back_offset (2), so output must be the
	// periodic extension of the preceding 2 bytes: "ababababa".
	control := byte(2<<4) | byte(9-4)
	input := []byte{control, 'a', 'b', 2, 0}
	got, err := Decompress(input, 11)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	want := "ab" + "ababababa"
	if !bytes.Equal(got, []byte(want)) {
		t.Fatalf("Decompress() = %q, want %q", got, want)
	}
}

func TestDecompressExtendedLiteralLength(t *testing.T) {
	// L nibble = 0xf triggers the extension chain: one extra byte of 0xff
	// (continue) then a terminating byte of 3, giving a literal run of
	// 15 + 255 + 3 = 273 bytes... keep it small for the test: use a
	// single non-0xff extension byte so the final literal length is
	// 15 + 5 = 20.
	literal := bytes.Repeat([]byte{'x'}, 20)
	control := byte(0xf << 4) // M nibble = 0 -> M = 4, irrelevant since input exhausts after literal
	input := append([]byte{control, 5}, literal...)
	got, err := Decompress(input, 20)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(got, literal) {
		t.Fatalf("Decompress() = %q, want %q", got, literal)
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	input := []byte{0x50, 'h', 'e', 'l', 'l'} // declares 5 literal bytes but only supplies 4
	if _, err := Decompress(input, 5); err != ErrSizeMismatch {
		t.Fatalf("Decompress() error = %v, want ErrSizeMismatch", err)
	}
}

func TestDecompressNeverOverrunsOutput(t *testing.T) {
	// A match run that would write past the declared capacity must be
	// rejected rather than writing out of bounds.
	control := byte(2<<4) | byte(8-4)
	input := []byte{control, 'a', 'b', 1, 0}
	if _, err := Decompress(input, 4); err != ErrSizeMismatch {
		t.Fatalf("Decompress() error = %v, want ErrSizeMismatch", err)
	}
}

func TestDecompressRoundTripAgainstKnownVector(t *testing.T) {
	// A single token: literal "AAAA", then a match reproducing "AAAA"
	// again via back_offset=4, M=4 (S2/S3 style equality check).
	tok := buildToken([]byte("AAAA"), 4, 4)
	got, err := Decompress(tok, 8)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if string(got) != "AAAAAAAA" {
		t.Fatalf("Decompress() = %q", got)
	}
}
