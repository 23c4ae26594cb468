// Package shim implements the per-entry-point RPC marshalling that makes
// a linked-in shim look, to the host program, like the GPU runtime it
// replaces. Every exported method corresponds to one intercepted entry
// point: it marshals its arguments onto a transport.Client request,
// waits for the remote's response, and unmarshals a result — consulting
// or updating the local function registry where the entry point requires
// it.
package shim

import (
	"context"
	"errors"
	"fmt"

	"github.com/crossgpu/cudashim/internal/logging"
	"github.com/crossgpu/cudashim/pkg/fatbin"
	"github.com/crossgpu/cudashim/pkg/ptx"
	"github.com/crossgpu/cudashim/pkg/registry"
	"github.com/crossgpu/cudashim/pkg/tokens"
	"github.com/crossgpu/cudashim/pkg/transport"
	"github.com/crossgpu/cudashim/pkg/wire"
)

// ErrDevicesUnavailable is the failure status every entry point returns
// to the host on any transport-boundary failure, an unbound launch, or a
// malformed response. A request that completes the transport round trip
// still reports the remote's own Status alongside a nil error — this
// sentinel is reserved for the cases where no such status exists at all.
var ErrDevicesUnavailable = errors.New("shim: devices unavailable")

// Surface is the set of intercepted entry points, bound to one transport
// channel and one function registry.
type Surface struct {
	tr      transport.Client
	reg     *registry.Registry
	log     *logging.Logger
	channel int
}

// New returns a Surface that marshals every entry point onto tr's
// channel 0 and resolves launches against reg.
func New(tr transport.Client, reg *registry.Registry) *Surface {
	return &Surface{tr: tr, reg: reg, log: logging.New("shim"), channel: 0}
}

// MemcpyKind mirrors the runtime's cudaMemcpyKind enumeration: the wire
// direction sent ahead of every memory-copy request.
type MemcpyKind uint32

const (
	MemcpyHostToHost     MemcpyKind = 0
	MemcpyHostToDevice   MemcpyKind = 1
	MemcpyDeviceToHost   MemcpyKind = 2
	MemcpyDeviceToDevice MemcpyKind = 3
	MemcpyDefault        MemcpyKind = 4
)

// MemcpyArgs describes one memory-copy call. Which field carries the
// payload depends on Kind: for MemcpyDeviceToHost, Src names the remote
// source address and HostBuf is filled from the response; for every
// other kind, Dst names the remote destination address and HostBuf is
// sent as the request payload. Stream is only read for the async
// variant.
type MemcpyArgs struct {
	Kind    MemcpyKind
	Dst     tokens.DevicePtr
	Src     tokens.DevicePtr
	HostBuf []byte
	Stream  tokens.Stream
}

// Memcpy marshals a synchronous memory copy.
func (s *Surface) Memcpy(ctx context.Context, args MemcpyArgs) (Status, error) {
	return s.memcpy(ctx, transport.OpMemcpy, args, false)
}

// MemcpyAsync marshals an asynchronous memory copy, additionally
// transmitting the stream token at the end of the argument list.
func (s *Surface) MemcpyAsync(ctx context.Context, args MemcpyArgs) (Status, error) {
	return s.memcpy(ctx, transport.OpMemcpyAsync, args, true)
}

func (s *Surface) memcpy(ctx context.Context, op transport.OpCode, args MemcpyArgs, async bool) (Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, op); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("memcpy: start_request", err)
	}

	w := wire.NewWriter()
	w.PutU32(uint32(args.Kind))

	if args.Kind == MemcpyDeviceToHost {
		w.PutU64(uint64(args.Src))
		w.PutU64(uint64(len(args.HostBuf)))
	} else {
		w.PutU64(uint64(args.Dst))
		w.PutU64(uint64(len(args.HostBuf)))
		w.PutBytes(args.HostBuf)
	}
	if async {
		w.PutU64(uint64(args.Stream))
	}

	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("memcpy: write", err)
	}

	if args.Kind == MemcpyDeviceToHost {
		if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
			return StatusDevicesUnavailable, wrapUnavailable("memcpy: wait_for_response", err)
		}
		if err := s.tr.Read(ctx, s.channel, args.HostBuf); err != nil {
			return StatusDevicesUnavailable, wrapUnavailable("memcpy: read", err)
		}
	} else {
		if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
			return StatusDevicesUnavailable, wrapUnavailable("memcpy: wait_for_response", err)
		}
	}

	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("memcpy: end_request", err)
	}
	return status, nil
}

// Dim3 mirrors the runtime's three-dimensional grid/block configuration.
type Dim3 struct {
	X, Y, Z uint32
}

func (d Dim3) writeTo(w *wire.Writer) {
	w.PutU32(d.X)
	w.PutU32(d.Y)
	w.PutU32(d.Z)
}

func readDim3(r *wire.Reader) (Dim3, error) {
	x, err := r.U32()
	if err != nil {
		return Dim3{}, err
	}
	y, err := r.U32()
	if err != nil {
		return Dim3{}, err
	}
	z, err := r.U32()
	if err != nil {
		return Dim3{}, err
	}
	return Dim3{X: x, Y: y, Z: z}, nil
}

// LaunchKernel marshals a kernel launch against the host-function token
// the caller previously registered, looking up the parameter layout in
// the registry. args holds one byte slice per parameter, in declaration
// order; each slice must be at least as long as the registry's recorded
// width for that parameter, since the registry's width, not the slice's
// length, is what gets written to the wire, per the reference runtime's
// own convention of trusting the registration-time layout.
func (s *Surface) LaunchKernel(ctx context.Context, host tokens.HostFunction, grid, block Dim3, sharedMem uint64, stream tokens.Stream, args [][]byte) (Status, error) {
	fn := s.reg.LookupByHost(host)
	if fn == nil {
		return StatusDevicesUnavailable, fmt.Errorf("shim: launch: unbound host function: %w", ErrDevicesUnavailable)
	}

	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpLaunchKernel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("launch: start_request", err)
	}

	w := wire.NewWriter()
	w.PutU64(uint64(host))
	grid.writeTo(w)
	block.writeTo(w)
	w.PutU64(sharedMem)
	w.PutU64(uint64(stream))

	w.PutU32(uint32(len(fn.ArgWidths)))
	for i, width := range fn.ArgWidths {
		w.PutU32(uint32(width))
		if width == 0 {
			continue
		}
		if i >= len(args) || len(args[i]) < width {
			return StatusDevicesUnavailable, fmt.Errorf("shim: launch: argument %d shorter than registered width %d: %w", i, width, ErrDevicesUnavailable)
		}
		w.PutBytes(args[i][:width])
	}

	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("launch: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("launch: wait_for_response", err)
	}
	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("launch: end_request", err)
	}
	return status, nil
}

// RegisterFatBinary forwards the raw container bytes to the remote so it
// can load the module itself, and once that round trip succeeds runs the
// local walker so the registry can answer future launch queries without a
// round trip.
// Every kernel the PTX scanner recovers from the container's text
// sections is appended to the registry as a new record with its host
// function left unset; RegisterFunction later binds a host token to one
// of these records by device_name, rather than creating its own. The
// remote-assigned container handle is returned to the caller.
func (s *Surface) RegisterFatBinary(ctx context.Context, raw []byte) (tokens.Container, *fatbin.ParseResult, Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpRegisterFatBinary); err != nil {
		return 0, nil, StatusDevicesUnavailable, wrapUnavailable("register_fat_binary: start_request", err)
	}

	w := wire.NewWriter()
	w.PutU64(uint64(len(raw)))
	w.PutBytes(raw)
	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return 0, nil, StatusDevicesUnavailable, wrapUnavailable("register_fat_binary: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return 0, nil, StatusDevicesUnavailable, wrapUnavailable("register_fat_binary: wait_for_response", err)
	}

	var buf [8]byte
	if err := s.tr.Read(ctx, s.channel, buf[:]); err != nil {
		return 0, nil, StatusDevicesUnavailable, wrapUnavailable("register_fat_binary: read handle", err)
	}
	handleU64, _ := wire.NewReader(buf[:]).U64()
	handle := tokens.Container(handleU64)

	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return 0, nil, StatusDevicesUnavailable, wrapUnavailable("register_fat_binary: end_request", err)
	}

	result := fatbin.Register(handle, raw)

	var scanned int
	for _, section := range result.Sections {
		kernels := ptx.Scan(section.Text)
		for _, k := range kernels {
			s.reg.Append(&registry.Function{
				DeviceName:     k.Name,
				FatBinary:      handle,
				ArgWidths:      k.ArgWidths,
				ArgWidthsKnown: true,
			})
			scanned++
		}
	}

	s.log.Printf("registered container %s (%s): %d section(s), %d kernel(s) scanned, %d rejected",
		handle, fatbin.Fingerprint(raw), len(result.Sections), scanned, result.Rejected)
	return handle, result, status, nil
}

// RegisterFatBinaryEnd marshals the end-of-registration call the host
// runtime issues once it has finished registering every function and
// variable belonging to one fat binary.
func (s *Surface) RegisterFatBinaryEnd(ctx context.Context, handle tokens.Container) (Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpRegisterFatBinaryEnd); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_fat_binary_end: start_request", err)
	}
	w := wire.NewWriter()
	w.PutU64(uint64(handle))
	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_fat_binary_end: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_fat_binary_end: wait_for_response", err)
	}
	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_fat_binary_end: end_request", err)
	}
	return status, nil
}

// StructurePresence is the bitmask of which optional launch-bounds
// structures accompany a function registration.
type StructurePresence struct {
	ThreadIDs *[3]uint32 // tid
	BlockIDs  *[3]uint32 // bid
	BlockDim  *Dim3      // bDim
	GridDim   *Dim3      // gDim
	WarpSize  *int32     // wSize
}

func (p StructurePresence) mask() uint8 {
	var m uint8
	if p.ThreadIDs != nil {
		m |= 1 << 0
	}
	if p.BlockIDs != nil {
		m |= 1 << 1
	}
	if p.BlockDim != nil {
		m |= 1 << 2
	}
	if p.GridDim != nil {
		m |= 1 << 3
	}
	if p.WarpSize != nil {
		m |= 1 << 4
	}
	return m
}

// RegisterFunction marshals a function registration: the container
// handle, host-function token, device-function string, device-name
// string, the thread_limit scalar, a presence bitmask, and then whichever
// of the five optional structures the bitmask declares present. Locally,
// it only binds host to whichever existing registry record matches
// deviceName — a record the PTX scanner never produced during
// RegisterFatBinary is never created here, so a device_name the scanner
// didn't find can never become launchable.
func (s *Surface) RegisterFunction(ctx context.Context, handle tokens.Container, host tokens.HostFunction, deviceFunc, deviceName string, threadLimit int32, presence StructurePresence) (Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpRegisterFunction); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_function: start_request", err)
	}

	w := wire.NewWriter()
	w.PutU64(uint64(handle))
	w.PutU64(uint64(host))
	w.PutString(deviceFunc)
	w.PutString(deviceName)
	w.PutU32(uint32(threadLimit))
	w.PutByte(presence.mask())

	if presence.ThreadIDs != nil {
		putUint32Array3(w, *presence.ThreadIDs)
	}
	if presence.BlockIDs != nil {
		putUint32Array3(w, *presence.BlockIDs)
	}
	if presence.BlockDim != nil {
		presence.BlockDim.writeTo(w)
	}
	if presence.GridDim != nil {
		presence.GridDim.writeTo(w)
	}
	if presence.WarpSize != nil {
		w.PutU32(uint32(*presence.WarpSize))
	}

	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_function: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_function: wait_for_response", err)
	}
	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_function: end_request", err)
	}

	s.reg.BindHost(deviceName, host)
	return status, nil
}

func putUint32Array3(w *wire.Writer, a [3]uint32) {
	w.PutU32(a[0])
	w.PutU32(a[1])
	w.PutU32(a[2])
}

// PushCallConfiguration marshals the runtime's implicit launch-config
// stack push, issued by generated code ahead of a <<<...>>> launch.
func (s *Surface) PushCallConfiguration(ctx context.Context, grid, block Dim3, sharedMem uint64, stream tokens.Stream) (Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpPushCallConfiguration); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("push_call_configuration: start_request", err)
	}
	w := wire.NewWriter()
	grid.writeTo(w)
	block.writeTo(w)
	w.PutU64(sharedMem)
	w.PutU64(uint64(stream))
	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("push_call_configuration: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("push_call_configuration: wait_for_response", err)
	}
	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("push_call_configuration: end_request", err)
	}
	return status, nil
}

// PopCallConfiguration marshals the matching pop, returning the
// configuration the remote popped off its stack.
func (s *Surface) PopCallConfiguration(ctx context.Context) (grid, block Dim3, sharedMem uint64, stream tokens.Stream, status Status, err error) {
	if _, err = s.tr.StartRequest(ctx, s.channel, transport.OpPopCallConfiguration); err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: start_request", err)
	}
	if err = s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: wait_for_response", err)
	}

	buf := make([]byte, 12+12+8+8)
	if err = s.tr.Read(ctx, s.channel, buf); err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: read", err)
	}
	r := wire.NewReader(buf)
	grid, err = readDim3(r)
	if err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: decode grid", err)
	}
	block, err = readDim3(r)
	if err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: decode block", err)
	}
	sm, err := r.U64()
	if err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: decode shared_mem", err)
	}
	st, err := r.U64()
	if err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: decode stream", err)
	}

	status, err = s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return Dim3{}, Dim3{}, 0, 0, StatusDevicesUnavailable, wrapUnavailable("pop_call_configuration: end_request", err)
	}
	return grid, block, sm, tokens.Stream(st), status, nil
}

// RegisterVar marshals a variable/constant-bank registration. It is a
// pure passthrough to the remote; the only local effect is an entry
// appended to the registry's diagnostic-only variable index, which no
// other entry point ever consults.
func (s *Surface) RegisterVar(ctx context.Context, handle tokens.Container, hostVar, deviceAddress, deviceName string, ext bool, size int64, constant, global bool) (Status, error) {
	if _, err := s.tr.StartRequest(ctx, s.channel, transport.OpRegisterVar); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_var: start_request", err)
	}

	w := wire.NewWriter()
	w.PutU64(uint64(handle))
	w.PutString(hostVar)
	w.PutString(deviceAddress)
	w.PutString(deviceName)
	w.PutU32(boolToU32(ext))
	w.PutU64(uint64(size))
	w.PutU32(boolToU32(constant))
	w.PutU32(boolToU32(global))

	if err := s.tr.Write(ctx, s.channel, w.Bytes()); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_var: write", err)
	}
	if err := s.tr.WaitForResponse(ctx, s.channel); err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_var: wait_for_response", err)
	}
	status, err := s.tr.EndRequest(ctx, s.channel)
	if err != nil {
		return StatusDevicesUnavailable, wrapUnavailable("register_var: end_request", err)
	}

	s.reg.AppendVariable(registry.Variable{
		DeviceName: deviceName,
		FatBinary:  handle,
		Size:       size,
		Constant:   constant,
		Global:     global,
	})
	return status, nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// InitModule is a local no-op: the reference runtime never issues an RPC
// for it, it exists only so the host's call into the shim succeeds.
func (s *Surface) InitModule(ctx context.Context, handle tokens.Container) {}

// UnregisterFatBinary is a local no-op: unregistration does not free any
// remote state the shim tracks — the remote owns GPU lifetime.
func (s *Surface) UnregisterFatBinary(ctx context.Context, handle tokens.Container) {}

// GetErrorString renders a runtime status code as a human-readable
// string purely from a local lookup table; it never touches the
// transport.
func GetErrorString(status Status) string {
	if s, ok := errorStrings[status]; ok {
		return s
	}
	return "Unknown CUDA error"
}

func wrapUnavailable(where string, err error) error {
	return fmt.Errorf("shim: %s: %v: %w", where, err, ErrDevicesUnavailable)
}
