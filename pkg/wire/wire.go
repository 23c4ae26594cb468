// Package wire provides little-endian byte encoding helpers shared by the
// fat-binary walker, the PTX scanner's callers, and the RPC shim surface.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrShortInput is returned when a read would run past the end of the
// supplied byte slice.
var ErrShortInput = errors.New("wire: short input")

// Reader is a bounds-checked cursor over a byte slice. It never reads past
// the slice it was built from.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf in a bounds-checked reader starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Seek sets the read offset, clamped to the buffer bounds.
func (r *Reader) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(r.buf) {
		pos = len(r.buf)
	}
	r.pos = pos
}

// Bytes returns n bytes from the current position and advances the cursor.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrShortInput
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Writer accumulates little-endian encoded values into a byte buffer.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(b []byte) {
	w.buf.Write(b)
}

// PutByte appends a single byte.
func (w *Writer) PutByte(b byte) {
	w.buf.WriteByte(b)
}

// PutU16 appends a little-endian uint16.
func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// PutU32 appends a little-endian uint32.
func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// PutU64 appends a little-endian uint64.
func (w *Writer) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// PutString appends a 8-byte length prefix followed by the string bytes and
// a trailing NUL, matching the size-prefixed-C-string layout the shim
// surface uses for device names and symbol strings.
func (w *Writer) PutString(s string) {
	w.PutU64(uint64(len(s) + 1))
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteTo satisfies io.WriterTo, draining the accumulated bytes into dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.buf.WriteTo(dst)
}
