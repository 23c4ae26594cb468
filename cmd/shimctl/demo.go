package main

import (
	"github.com/crossgpu/cudashim/pkg/fatbin"
	"github.com/crossgpu/cudashim/pkg/wire"
)

// demoPTX is a hand-written PTX text section for a single kernel, just
// rich enough to exercise the scanner's param-width recovery on a mix of
// pointer and scalar widths.
const demoPTX = `
.version 7.0
.target sm_70

.visible .entry vector_add(
	.param .u64 a,
	.param .u64 b,
	.param .u64 out,
	.param .u32 n
)
{
	ret;
}
`

// buildDemoFatBinary synthesizes a single-entry, uncompressed fat-binary
// container wrapping demoPTX, in the same header+entry layout pkg/fatbin
// walks.
func buildDemoFatBinary() []byte {
	payload := []byte(demoPTX)

	entry := wire.NewWriter()
	entry.PutU16(fatbin.TypePTX)
	entry.PutU16(0)
	entry.PutU32(uint32(fatbin.EntryHeaderSize))
	entry.PutU32(uint32(len(payload)))
	entry.PutU32(uint32(len(payload)))
	entry.PutBytes(payload)

	w := wire.NewWriter()
	w.PutU32(fatbin.Magic)
	w.PutU32(1)
	w.PutU64(uint64(entry.Len()))
	w.PutBytes(entry.Bytes())
	return w.Bytes()
}
