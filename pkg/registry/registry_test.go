package registry

import (
	"testing"

	"github.com/crossgpu/cudashim/pkg/tokens"
)

func TestAppendAndLookupByName(t *testing.T) {
	r := New()
	r.Append(&Function{DeviceName: "saxpy", FatBinary: tokens.Container(1)})
	r.Append(&Function{DeviceName: "other", FatBinary: tokens.Container(1)})

	got := r.LookupByName("saxpy")
	if len(got) != 1 || got[0].DeviceName != "saxpy" {
		t.Fatalf("LookupByName(saxpy) = %v", got)
	}
}

func TestBindHostThenLookupByHost(t *testing.T) {
	r := New()
	r.Append(&Function{DeviceName: "saxpy"})

	if !r.BindHost("saxpy", tokens.HostFunction(42)) {
		t.Fatal("BindHost() = false, want true on first bind")
	}

	fn := r.LookupByHost(tokens.HostFunction(42))
	if fn == nil || fn.DeviceName != "saxpy" {
		t.Fatalf("LookupByHost() = %v", fn)
	}
}

func TestBindHostIsOnceOnly(t *testing.T) {
	r := New()
	r.Append(&Function{DeviceName: "saxpy"})
	r.Append(&Function{DeviceName: "other"})

	if !r.BindHost("saxpy", tokens.HostFunction(1)) {
		t.Fatal("first BindHost() = false")
	}
	if r.BindHost("other", tokens.HostFunction(1)) {
		t.Fatal("second BindHost() with the same token = true, want false")
	}

	fn := r.LookupByHost(tokens.HostFunction(1))
	if fn == nil || fn.DeviceName != "saxpy" {
		t.Fatalf("LookupByHost() after rejected rebind = %v, want the original binding intact", fn)
	}
}

func TestBindHostNoMatchingName(t *testing.T) {
	r := New()
	if r.BindHost("nonexistent", tokens.HostFunction(7)) {
		t.Fatal("BindHost() = true for a device_name that was never appended")
	}
}

func TestLookupByHostUnboundReturnsNil(t *testing.T) {
	r := New()
	if got := r.LookupByHost(tokens.HostFunction(99)); got != nil {
		t.Fatalf("LookupByHost() = %v, want nil", got)
	}
}

func TestAppendVariableIsDiagnosticOnly(t *testing.T) {
	r := New()
	r.Append(&Function{DeviceName: "saxpy"})
	r.AppendVariable(Variable{DeviceName: "saxpy", Size: 4, Constant: true})

	vars := r.Variables()
	if len(vars) != 1 || vars[0].DeviceName != "saxpy" {
		t.Fatalf("Variables() = %v", vars)
	}

	// Variable bookkeeping must not show up in the function-lookup paths.
	if r.BindHost("saxpy", tokens.HostFunction(5)) == false {
		t.Fatal("BindHost() = false, variable bookkeeping should not interfere")
	}
}

func TestBindHostBindsToFirstMatchingRegistration(t *testing.T) {
	r := New()
	first := &Function{DeviceName: "saxpy"}
	second := &Function{DeviceName: "saxpy"}
	r.Append(first)
	r.Append(second)

	r.BindHost("saxpy", tokens.HostFunction(1))
	fn := r.LookupByHost(tokens.HostFunction(1))
	if fn != first {
		t.Fatal("BindHost() did not bind to the first appended matching registration")
	}
}
