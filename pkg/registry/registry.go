// Package registry tracks the function and variable registrations a
// client process makes at load time, so a later kernel launch referring
// only to an opaque host_function token can be resolved back to its
// device_name and argument layout.
package registry

import (
	"sync"

	"github.com/crossgpu/cudashim/pkg/tokens"
)

// Function is one registered kernel: its device-side name, the PTX
// parameter widths recovered for it (if the fat binary's PTX section
// could be scanned), and the fat binary it was registered against.
type Function struct {
	DeviceName     string
	HostFunction   tokens.HostFunction
	FatBinary      tokens.Container
	ArgWidths      []int
	ArgWidthsKnown bool
}

// Variable is a diagnostic-only record of a __cudaRegisterVar call. It is
// never consulted when marshalling an RPC — the reference client's
// variable registration is a pure passthrough — so this exists solely for
// diagnostics, read back through Registry.Variables.
type Variable struct {
	DeviceName string
	FatBinary  tokens.Container
	Size       int64
	Constant   bool
	Global     bool
}

// Registry is the process-wide table of registered functions and
// variables. It is safe for concurrent use: registrations happen once at
// load time from a single thread in practice, but lookups during a
// launch may race with late registrations, so every access goes through
// a reader-preferring mutex.
type Registry struct {
	mu sync.RWMutex

	byName []*Function // insertion order, scanned for device_name matches
	byHost map[tokens.HostFunction]*Function

	variables []Variable
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byHost: make(map[tokens.HostFunction]*Function),
	}
}

// Append records a newly registered function under its device_name,
// typically one PTX scanner record per kernel discovered while walking a
// fat binary. The host_function token is not yet known at this point in
// the reference sequence — it is attached later via BindHost.
func (r *Registry) Append(fn *Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = append(r.byName, fn)
}

// BindHost associates a host_function token with the first appended
// entry whose device_name matches. Binding is once-only: if the token is
// already bound to a different entry, BindHost leaves the existing
// binding untouched and reports false, since the reference client never
// rebinds a host_function once a kernel launch has started using it. A
// device_name with no matching record — the host runtime registered a
// kernel the PTX scanner never found — is silently dropped, also
// reporting false.
func (r *Registry) BindHost(deviceName string, host tokens.HostFunction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, bound := r.byHost[host]; bound {
		return false
	}

	for i := 0; i < len(r.byName); i++ {
		if r.byName[i].DeviceName == deviceName {
			r.byName[i].HostFunction = host
			r.byHost[host] = r.byName[i]
			return true
		}
	}
	return false
}

// LookupByHost resolves a host_function token to its registered
// Function, or nil if no binding exists.
func (r *Registry) LookupByHost(host tokens.HostFunction) *Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byHost[host]
}

// LookupByName returns every Function registered under the given
// device_name, in registration order. A fat binary can register several
// overloads or specializations of the same device_name, so this can
// return more than one entry.
func (r *Registry) LookupByName(deviceName string) []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Function
	for _, fn := range r.byName {
		if fn.DeviceName == deviceName {
			out = append(out, fn)
		}
	}
	return out
}

// AppendVariable records a __cudaRegisterVar call for diagnostics. It
// never affects LookupByHost or LookupByName.
func (r *Registry) AppendVariable(v Variable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables = append(r.variables, v)
}

// Variables returns every recorded variable registration, in order.
func (r *Registry) Variables() []Variable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Variable, len(r.variables))
	copy(out, r.variables)
	return out
}
