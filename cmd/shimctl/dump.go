package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/crossgpu/cudashim/pkg/tokens"
)

// dumpContainer writes raw's zstd-compressed bytes to dir, named after the
// container token it was registered under, for offline inspection. shimctl
// itself never reads a dump back.
func dumpContainer(dir string, handle tokens.Container, raw []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("shimctl: dump dir: %w", err)
	}

	path := filepath.Join(dir, handle.String()+".bin.zst")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("shimctl: create dump file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("shimctl: new zstd writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("shimctl: write dump: %w", err)
	}
	return w.Close()
}
