// Package fatbin parses the vendor fat-binary container format: it walks
// entries, isolates PTX text sections, and decompresses them with the
// container's bespoke LZ77-style scheme when required.
package fatbin

import "github.com/crossgpu/cudashim/pkg/tokens"

// Magic is the 32-bit sentinel identifying a v2 fat-binary container.
// Containers with any other magic are passed through to the transport
// unparsed — older magic variants are explicitly out of scope.
const Magic uint32 = 0x466243b1

// HeaderSize is the size in bytes of Header as laid out on the wire.
const HeaderSize = 4 + 4 + 8

// Header is the fixed container header at offset 0.
type Header struct {
	Magic    uint32
	Version  uint32
	Size     uint64 // length in bytes of the entries region that follows
}

// EntryHeaderSize is the size in bytes of EntryHeader as laid out on the
// wire.
const EntryHeaderSize = 2 + 2 + 4 + 4 + 4

// EntryHeader describes one entry in the entries region.
type EntryHeader struct {
	TypeFlags        uint16
	ContainerFlags   uint16
	PayloadOffset    uint32 // relative to this entry's own header
	BinarySize       uint32
	UncompressedSize uint32
}

// Entry type-flag bits.
const (
	// TypePTX marks an entry as containing PTX text.
	TypePTX uint16 = 0x0001
)

// Container flag bits.
const (
	// FlagCompressed marks an entry's payload as LZ-compressed.
	FlagCompressed uint16 = 0x2000
)

// Section is one decoded PTX entry extracted from a container, ready to be
// handed to the PTX scanner.
type Section struct {
	Text             []byte
	WasCompressed    bool
	UncompressedSize int
}

// ParseResult is the outcome of walking one container: the PTX sections
// recovered, and the number of entries rejected by a structural or
// decompression check (rejection is per-entry and never aborts the walk).
type ParseResult struct {
	Token     tokens.Container
	Sections  []Section
	Rejected  int
	Recognized bool // false if the magic did not match Magic
}
