package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tubeaudio/internal/config"
)

// ConfigOption adjusts a generated test config. base is the per-test temp root.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns the default config with every directory moved under a
// fresh temp root and retry sleeps disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "music")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Retry.RetryDelaySeconds = 0

	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp root NewConfig created for cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func WithOutputDir(dir string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Paths.OutputDir = dir
	}
}

func WithOverwrite(enabled bool) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Audio.OverwriteExisting = enabled
	}
}

// WithStubbedBinaries puts no-op executables for names (yt-dlp, ffmpeg and
// ffprobe when empty) at the front of PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, base string, _ *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
		}
		bin := filepath.Join(base, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
