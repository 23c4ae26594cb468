package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func echoHandler(op OpCode, request []byte) ([]byte, Status, error) {
	return append([]byte{byte(op)}, request...), StatusSuccess, nil
}

func TestLoopbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)

	if _, err := l.StartRequest(ctx, 0, OpMemcpy); err != nil {
		t.Fatalf("StartRequest() error = %v", err)
	}
	if err := l.Write(ctx, 0, []byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := l.WaitForResponse(ctx, 0); err != nil {
		t.Fatalf("WaitForResponse() error = %v", err)
	}

	got := make([]byte, 6)
	if err := l.Read(ctx, 0, got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := append([]byte{byte(OpMemcpy)}, []byte("hello")...)
	if !bytes.Equal(got, want) {
		t.Fatalf("Read() = %v, want %v", got, want)
	}

	if _, err := l.EndRequest(ctx, 0); err != nil {
		t.Fatalf("EndRequest() error = %v", err)
	}
}

func TestLoopbackRejectsOverlappingRequests(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)

	if _, err := l.StartRequest(ctx, 0, OpMemcpy); err != nil {
		t.Fatalf("first StartRequest() error = %v", err)
	}
	if _, err := l.StartRequest(ctx, 0, OpMemcpyAsync); !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("second StartRequest() error = %v, want ErrRequestInFlight", err)
	}
}

func TestLoopbackWriteWithoutStartRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)
	if err := l.Write(ctx, 0, []byte("x")); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("Write() error = %v, want ErrNoRequest", err)
	}
}

func TestLoopbackReadBeforeWaitRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)
	l.StartRequest(ctx, 0, OpMemcpy)
	if err := l.Read(ctx, 0, make([]byte, 1)); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("Read() error = %v, want ErrNoRequest", err)
	}
}

func TestLoopbackEndRequestFreesTheNextStart(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)

	l.StartRequest(ctx, 0, OpMemcpy)
	l.WaitForResponse(ctx, 0)
	l.Read(ctx, 0, make([]byte, 1))
	if _, err := l.EndRequest(ctx, 0); err != nil {
		t.Fatalf("EndRequest() error = %v", err)
	}

	if _, err := l.StartRequest(ctx, 0, OpLaunchKernel); err != nil {
		t.Fatalf("StartRequest() after EndRequest() error = %v", err)
	}
}

func TestLoopbackClosedRejectsEverything(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)
	l.Close()
	if _, err := l.StartRequest(ctx, 0, OpMemcpy); !errors.Is(err, ErrClosed) {
		t.Fatalf("StartRequest() on closed transport error = %v, want ErrClosed", err)
	}
}

func TestLoopbackHandlerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("boom")
	l := NewLoopback(func(OpCode, []byte) ([]byte, Status, error) { return nil, 0, wantErr })

	l.StartRequest(ctx, 0, OpMemcpy)
	if err := l.WaitForResponse(ctx, 0); !errors.Is(err, wantErr) {
		t.Fatalf("WaitForResponse() error = %v, want %v", err, wantErr)
	}
}

func TestLoopbackEndRequestReturnsHandlerStatus(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(func(OpCode, []byte) ([]byte, Status, error) { return []byte{}, StatusLaunchFailure, nil })

	l.StartRequest(ctx, 0, OpLaunchKernel)
	l.WaitForResponse(ctx, 0)
	status, err := l.EndRequest(ctx, 0)
	if err != nil {
		t.Fatalf("EndRequest() error = %v", err)
	}
	if status != StatusLaunchFailure {
		t.Fatalf("EndRequest() status = %v, want StatusLaunchFailure", status)
	}
}

func TestLoopbackChannelsAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewLoopback(echoHandler)

	if _, err := l.StartRequest(ctx, 0, OpMemcpy); err != nil {
		t.Fatalf("StartRequest(channel 0) error = %v", err)
	}
	if _, err := l.StartRequest(ctx, 1, OpLaunchKernel); err != nil {
		t.Fatalf("StartRequest(channel 1) error = %v, want success on an independent channel", err)
	}
}
