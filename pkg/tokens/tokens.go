// Package tokens defines the opaque, pointer-sized identifiers exchanged
// between the shim and the remote executor: container handles, host
// function pointers, and stream tokens.
//
// These values are never dereferenced on either side of the wire — they
// are transmitted as opaque 64-bit identifiers, correct only because the
// remote treats them as keys rather than addresses.
package tokens

import "github.com/mr-tron/base58"

// HostFunction identifies a host-side function stub, as supplied by the
// host runtime's function-registration call.
type HostFunction uint64

// Container identifies a fat-binary registration, either the local
// registration token the host runtime passes in, or the opaque handle the
// remote returns.
type Container uint64

// Stream identifies a launch/copy stream.
type Stream uint64

// DevicePtr identifies a remote device memory address, used only as an
// opaque key in memory-copy and kernel-launch argument marshalling.
type DevicePtr uint64

// String renders a token as base58 for diagnostic logs and dumps.
func (h HostFunction) String() string { return encode(uint64(h)) }

// String renders a token as base58 for diagnostic logs and dumps.
func (c Container) String() string { return encode(uint64(c)) }

// String renders a token as base58 for diagnostic logs and dumps.
func (s Stream) String() string { return encode(uint64(s)) }

// String renders a token as base58 for diagnostic logs and dumps.
func (d DevicePtr) String() string { return encode(uint64(d)) }

func encode(v uint64) string {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return base58.Encode(b[:])
}
