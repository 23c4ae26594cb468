package transport

import (
	"bytes"
	"context"
	"sync"
)

// Handler computes a response for one request, given the op it was
// started with and the bytes accumulated across every Write call. It
// plays the role the remote device process fills in production. The
// returned Status is carried back to the caller via EndRequest; err is
// reserved for transport-boundary failure, not a logical failure the
// remote itself reports.
type Handler func(op OpCode, request []byte) (response []byte, status Status, err error)

// Loopback is an in-process Client double that dispatches each request
// straight to a Handler instead of crossing a real connection. It
// enforces the same StartRequest/Write/WaitForResponse/Read/EndRequest
// state machine a real transport would, including single-flight request
// atomicity per channel, so tests exercising the shim surface see the
// same ordering constraints a production transport imposes. The core
// only ever drives channel 0, but Loopback keeps per-channel state so a
// test can exercise concurrent channels directly against the contract.
type Loopback struct {
	handler Handler

	mu       sync.Mutex
	closed   bool
	seq      uint64
	channels map[int]*channelState
}

type channelState struct {
	state  state
	op     OpCode
	reqBuf bytes.Buffer
	resp   []byte
	rpos   int
	status Status
}

// NewLoopback returns a Loopback that dispatches every request to
// handler.
func NewLoopback(handler Handler) *Loopback {
	return &Loopback{handler: handler, channels: make(map[int]*channelState)}
}

func (l *Loopback) chanState(channel int) *channelState {
	cs, ok := l.channels[channel]
	if !ok {
		cs = &channelState{}
		l.channels[channel] = cs
	}
	return cs
}

func (l *Loopback) StartRequest(ctx context.Context, channel int, op OpCode) (RequestID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	cs := l.chanState(channel)
	if cs.state != stateIdle {
		return 0, ErrRequestInFlight
	}
	cs.state = stateStarted
	cs.op = op
	cs.reqBuf.Reset()
	cs.resp = nil
	cs.rpos = 0
	cs.status = StatusSuccess
	l.seq++
	return RequestID(l.seq), nil
}

func (l *Loopback) Write(ctx context.Context, channel int, p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	cs := l.chanState(channel)
	if cs.state != stateStarted && cs.state != stateWriting {
		return ErrNoRequest
	}
	cs.state = stateWriting
	cs.reqBuf.Write(p)
	return nil
}

func (l *Loopback) WaitForResponse(ctx context.Context, channel int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	cs := l.chanState(channel)
	if cs.state != stateStarted && cs.state != stateWriting {
		return ErrNoRequest
	}
	cs.state = stateWaiting

	resp, status, err := l.handler(cs.op, cs.reqBuf.Bytes())
	if err != nil {
		return err
	}
	cs.resp = resp
	cs.status = status
	cs.state = stateReading
	return nil
}

func (l *Loopback) Read(ctx context.Context, channel int, p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	cs := l.chanState(channel)
	if cs.state != stateReading {
		return ErrNoRequest
	}
	if cs.rpos+len(p) > len(cs.resp) {
		return ErrNoRequest
	}
	copy(p, cs.resp[cs.rpos:cs.rpos+len(p)])
	cs.rpos += len(p)
	return nil
}

func (l *Loopback) EndRequest(ctx context.Context, channel int) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	cs := l.chanState(channel)
	status := cs.status
	cs.state = stateIdle
	cs.op = 0
	cs.reqBuf.Reset()
	cs.resp = nil
	cs.rpos = 0
	cs.status = StatusSuccess
	return status, nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
