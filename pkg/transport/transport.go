// Package transport defines the request/response contract the shim
// surface marshals onto, and the op-code space a request is bound to at
// StartRequest time. Production builds carry this over a real connection
// to the remote device process; that connection is explicitly out of
// scope here (see loopback.go for the in-process double used to test the
// shim surface).
package transport

import (
	"context"
	"errors"
)

// OpCode identifies which entry point a framed request belongs to. The
// numbering follows the order the reference client declares its RPC_*
// call sites in.
type OpCode uint32

const (
	OpMemcpy OpCode = iota + 1
	OpMemcpyAsync
	OpLaunchKernel
	OpRegisterFatBinary
	OpRegisterFatBinaryEnd
	OpPushCallConfiguration
	OpPopCallConfiguration
	OpRegisterFunction
	OpRegisterVar
)

// Errors a Client implementation returns when a request cannot be
// carried to completion. The shim surface maps every one of these to its
// own ErrDevicesUnavailable, mirroring the reference client's uniform
// failure behaviour across every RPC_* call site.
var (
	ErrRequestInFlight = errors.New("transport: a request is already in flight")
	ErrNoRequest       = errors.New("transport: no request has been started")
	ErrClosed          = errors.New("transport: client is closed")
)

// Client is the framed request/response contract the shim surface needs
// from a transport. Exactly one request may be in flight per channel at
// a time: the sequence StartRequest, zero or more Write, WaitForResponse,
// zero or more Read, EndRequest must complete before the next
// StartRequest on that channel. The core only ever drives channel 0, but
// every call still carries the channel id because that is what a real
// transport multiplexes on.
type Client interface {
	// StartRequest begins a new request on channel bound to op,
	// returning the id assigned to this request/response cycle. It
	// fails with ErrRequestInFlight if a previous request on that
	// channel was not ended.
	StartRequest(ctx context.Context, channel int, op OpCode) (RequestID, error)

	// Write appends bytes to the request currently being built on
	// channel.
	Write(ctx context.Context, channel int, p []byte) error

	// WaitForResponse blocks until the remote side has produced a
	// response for the current request on channel.
	WaitForResponse(ctx context.Context, channel int) error

	// Read consumes exactly len(p) bytes of the current response on
	// channel into p.
	Read(ctx context.Context, channel int, p []byte) error

	// EndRequest closes out the current request/response cycle on
	// channel, returning it to a state where StartRequest may be
	// called again. The returned Status is the remote's own status
	// for this request, independent of the error: a nil error with a
	// non-success Status means the round trip itself succeeded but
	// the remote reports the operation failed.
	EndRequest(ctx context.Context, channel int) (Status, error)

	// Close releases the transport's resources. No further calls are
	// valid afterward.
	Close() error
}

// state is the request lifecycle a Client implementation steps through.
// It exists here so Loopback and any future real transport share
// one definition of "in what order are these calls legal".
type state int

const (
	stateIdle state = iota
	stateStarted
	stateWriting
	stateWaiting
	stateReading
	stateEnded
)
