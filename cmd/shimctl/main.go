// shimctl drives the shim surface end to end against the in-process
// loopback transport: it registers a synthetic fat binary, scans its PTX
// for a kernel's parameter widths, binds and launches that kernel, and
// exercises a host-to-device memory copy — printing enough at each step
// to double as a smoke test for the whole call chain.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/crossgpu/cudashim/internal/config"
	"github.com/crossgpu/cudashim/internal/logging"
	"github.com/crossgpu/cudashim/pkg/ptx"
	"github.com/crossgpu/cudashim/pkg/registry"
	"github.com/crossgpu/cudashim/pkg/shim"
	"github.com/crossgpu/cudashim/pkg/tokens"
	"github.com/crossgpu/cudashim/pkg/transport"
)

func main() {
	cfg := config.Default()
	config.RegisterFlags(flag.CommandLine, &cfg)
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	logger := logging.New("shimctl")

	if !cfg.Loopback {
		log.Fatalf("shimctl: only -loopback is implemented; a real transport to %s would need the remote's own framing, which is outside this module", cfg.RemoteAddr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var rl *replayLog
	if cfg.ReplayLog != "" {
		var err error
		rl, err = openReplayLog(cfg.ReplayLog)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer rl.Close()
	}

	handler := demoHandler
	if rl != nil {
		handler = recordingHandler(handler, rl)
	}

	reg := registry.New()
	tr := transport.NewLoopback(handler)
	surface := shim.New(tr, reg)

	raw := buildDemoFatBinary()
	handle, result, status, err := surface.RegisterFatBinary(ctx, raw)
	if err != nil {
		log.Fatalf("shimctl: register fat binary: %v", err)
	}
	logger.Printf("registered fat binary as container %s: recognized=%v sections=%d rejected=%d status=%s",
		handle, result.Recognized, len(result.Sections), result.Rejected, shim.GetErrorString(status))

	if len(result.Sections) > 0 {
		for _, k := range ptx.Scan(result.Sections[0].Text) {
			logger.Printf("scanned kernel %q: widths=%v visible=%v", k.Name, k.ArgWidths, k.Visible)
		}
	}

	host := tokens.HostFunction(1)
	if _, err := surface.RegisterFunction(ctx, handle, host, "vector_add", "vector_add", 0, shim.StructurePresence{}); err != nil {
		log.Fatalf("shimctl: register function: %v", err)
	}

	args := [][]byte{
		make([]byte, 8), // a
		make([]byte, 8), // b
		make([]byte, 8), // out
		encodeU32(1024), // n
	}
	launchStatus, err := surface.LaunchKernel(ctx, host, shim.Dim3{X: 4}, shim.Dim3{X: 256}, 0, 0, args)
	if err != nil {
		log.Fatalf("shimctl: launch kernel: %v", err)
	}
	logger.Printf("launched vector_add: status=%s", shim.GetErrorString(launchStatus))

	payload := []byte("shimctl smoke-test payload")
	if _, err := surface.Memcpy(ctx, shim.MemcpyArgs{Kind: shim.MemcpyHostToDevice, Dst: tokens.DevicePtr(0x1000), HostBuf: payload}); err != nil {
		log.Fatalf("shimctl: memcpy host to device: %v", err)
	}
	logger.Printf("copied %d bytes host to device", len(payload))

	if cfg.DumpDir != "" {
		if err := dumpContainer(cfg.DumpDir, handle, raw); err != nil {
			log.Fatalf("%v", err)
		}
		logger.Printf("dumped container to %s", cfg.DumpDir)
	}

	logger.Printf("GetErrorString(StatusSuccess) = %q", shim.GetErrorString(shim.StatusSuccess))
	fmt.Fprintln(os.Stdout, "shimctl: demo run complete")
}

func encodeU32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// demoHandler plays the role of the remote execution daemon for -loopback
// runs: it decodes just enough of each request to return a plausibly
// shaped response, without modeling any real device state.
func demoHandler(op transport.OpCode, request []byte) ([]byte, transport.Status, error) {
	switch op {
	case transport.OpRegisterFatBinary:
		var handle [8]byte
		handle[0] = 1
		return handle[:], transport.StatusSuccess, nil
	case transport.OpMemcpy, transport.OpMemcpyAsync:
		if len(request) < 4 {
			return nil, transport.StatusInvalidValue, fmt.Errorf("shimctl: demo handler: short memcpy request")
		}
		kind := binary.LittleEndian.Uint32(request[0:4])
		if kind != uint32(shim.MemcpyDeviceToHost) {
			return []byte{}, transport.StatusSuccess, nil
		}
		if len(request) < 20 {
			return nil, transport.StatusInvalidValue, fmt.Errorf("shimctl: demo handler: short device-to-host memcpy request")
		}
		size := binary.LittleEndian.Uint64(request[12:20])
		resp := make([]byte, size)
		for i := range resp {
			resp[i] = 0xAA
		}
		return resp, transport.StatusSuccess, nil
	case transport.OpPopCallConfiguration:
		return make([]byte, 12+12+8+8), transport.StatusSuccess, nil
	default:
		return []byte{}, transport.StatusSuccess, nil
	}
}

// recordingHandler wraps h so every dispatched request is appended to rl
// before its response is returned to the caller.
func recordingHandler(h transport.Handler, rl *replayLog) transport.Handler {
	return func(op transport.OpCode, request []byte) ([]byte, transport.Status, error) {
		resp, status, err := h(op, request)
		label := shim.GetErrorString(status)
		if err != nil {
			label = err.Error()
		}
		if logErr := rl.Record(op, 0, len(request), label); logErr != nil {
			return resp, status, logErr
		}
		return resp, status, err
	}
}
