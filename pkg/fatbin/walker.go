package fatbin

import (
	"encoding/binary"
	"fmt"

	"github.com/crossgpu/cudashim/pkg/tokens"
	"github.com/crossgpu/cudashim/pkg/wire"
	"github.com/zeebo/blake3"
)

// Register walks a fat-binary container's entries, isolating every PTX
// section (decompressing it first if the container marks it compressed),
// and returns the sections found. It does not modify data, so the caller
// can still forward the raw bytes to the transport unchanged.
//
// Register never fails outright: a container with the wrong magic is
// reported as unrecognized (Recognized=false) so the caller still
// forwards the raw bytes to the remote, and a malformed individual entry
// is skipped and counted in Rejected rather than aborting the walk, per
// the per-entry failure isolation the walker is required to provide.
func Register(token tokens.Container, data []byte) *ParseResult {
	result := &ParseResult{Token: token}

	if len(data) < HeaderSize {
		return result
	}

	r := wire.NewReader(data)
	magic, err := r.U32()
	if err != nil || magic != Magic {
		return result
	}
	result.Recognized = true

	version, err := r.U32()
	if err != nil {
		return result
	}
	_ = version

	size, err := r.U64()
	if err != nil {
		return result
	}

	afterHeader := r.Pos()
	regionEnd := afterHeader + int(size)
	if regionEnd > len(data) {
		regionEnd = len(data)
	}
	region := data[afterHeader:regionEnd]

	offset := 0
	for offset+EntryHeaderSize <= len(region) {
		entryBytes := region[offset:]
		entry, ok := parseEntryHeader(entryBytes)
		if !ok {
			break
		}

		advance := int(entry.PayloadOffset) + int(entry.BinarySize)
		if advance <= 0 {
			break
		}

		if entry.TypeFlags&TypePTX == 0 {
			offset += advance
			continue
		}

		section, ok := extractSection(entryBytes, entry)
		if !ok {
			result.Rejected++
			offset += advance
			continue
		}
		result.Sections = append(result.Sections, section)
		offset += advance
	}

	return result
}

func parseEntryHeader(b []byte) (EntryHeader, bool) {
	if len(b) < EntryHeaderSize {
		return EntryHeader{}, false
	}
	return EntryHeader{
		TypeFlags:        binary.LittleEndian.Uint16(b[0:2]),
		ContainerFlags:   binary.LittleEndian.Uint16(b[2:4]),
		PayloadOffset:    binary.LittleEndian.Uint32(b[4:8]),
		BinarySize:       binary.LittleEndian.Uint32(b[8:12]),
		UncompressedSize: binary.LittleEndian.Uint32(b[12:16]),
	}, true
}

// extractSection isolates one entry's payload bytes, decompressing them if
// the container marks the entry compressed, and validates the 8-byte
// alignment padding that follows a compressed payload.
func extractSection(entryBytes []byte, entry EntryHeader) (Section, bool) {
	payloadStart := int(entry.PayloadOffset)
	payloadEnd := payloadStart + int(entry.BinarySize)
	if payloadStart < 0 || payloadEnd > len(entryBytes) || payloadEnd < payloadStart {
		return Section{}, false
	}
	payload := entryBytes[payloadStart:payloadEnd]

	if entry.ContainerFlags&FlagCompressed == 0 {
		return Section{Text: payload, WasCompressed: false, UncompressedSize: len(payload)}, true
	}

	out, err := Decompress(payload, int(entry.UncompressedSize))
	if err != nil {
		return Section{}, false
	}

	if !paddingIsZero(entryBytes, payloadEnd, entry.BinarySize) {
		return Section{}, false
	}

	return Section{Text: out, WasCompressed: true, UncompressedSize: len(out)}, true
}

// paddingIsZero checks that the (8 - binarySize) mod 8 trailing bytes
// following a compressed payload's declared region are zero, the
// container's alignment pad.
func paddingIsZero(entryBytes []byte, payloadEnd int, binarySize uint32) bool {
	pad := (8 - int(binarySize%8)) % 8
	if pad == 0 {
		return true
	}
	if payloadEnd+pad > len(entryBytes) {
		return false
	}
	for _, b := range entryBytes[payloadEnd : payloadEnd+pad] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Fingerprint computes a content hash of a container's raw bytes, used
// only for diagnostic logging (the shim's registration log line) — it never
// feeds back into parsing or the wire protocol.
func Fingerprint(data []byte) string {
	h := blake3.New()
	h.Write(data)
	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum[:8])
}
