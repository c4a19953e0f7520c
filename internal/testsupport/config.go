package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/config"
)

// ConfigOption adjusts a config built by NewConfig. root is the per-test temp
// directory that also holds tmp/ and logs/.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns defaults pointed at per-test directories, mixing at
// 8 kHz mono so fixtures stay small.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempDir = filepath.Join(root, "tmp")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Mix.SampleRate = 8000
	cfg.Mix.Channels = 1

	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

func WithOutputFormat(format string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.Mix.OutputFormat = format }
}

// WithStubbedBinaries puts no-op executables first on PATH. With no names,
// ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, root string, _ *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		bin := filepath.Join(root, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
