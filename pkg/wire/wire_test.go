package wire

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutByte(0x42)
	w.PutU16(0x1234)
	w.PutU32(0xdeadbeef)
	w.PutU64(0x0102030405060708)
	w.PutString("kernel")

	r := NewReader(w.Bytes())

	b, err := r.Byte()
	if err != nil || b != 0x42 {
		t.Fatalf("Byte() = %v, %v", b, err)
	}

	u16, err := r.U16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("U16() = %v, %v", u16, err)
	}

	u32, err := r.U32()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("U32() = %v, %v", u32, err)
	}

	u64, err := r.U64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("U64() = %v, %v", u64, err)
	}

	strLen, err := r.U64()
	if err != nil || strLen != 7 {
		t.Fatalf("string length = %v, %v", strLen, err)
	}
	strBytes, err := r.Bytes(7)
	if err != nil {
		t.Fatalf("Bytes(7) = %v", err)
	}
	if string(strBytes[:6]) != "kernel" || strBytes[6] != 0 {
		t.Fatalf("string bytes = %q", strBytes)
	}
}

func TestReaderShortInput(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.Bytes(4); err != ErrShortInput {
		t.Fatalf("Bytes(4) error = %v, want ErrShortInput", err)
	}
	// A failed read must not advance the cursor.
	if r.Pos() != 0 {
		t.Fatalf("Pos() = %d, want 0 after failed read", r.Pos())
	}
}

func TestReaderSeekClamps(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	r.Seek(-5)
	if r.Pos() != 0 {
		t.Fatalf("Seek(-5) -> Pos() = %d, want 0", r.Pos())
	}
	r.Seek(100)
	if r.Pos() != 3 {
		t.Fatalf("Seek(100) -> Pos() = %d, want 3", r.Pos())
	}
}
