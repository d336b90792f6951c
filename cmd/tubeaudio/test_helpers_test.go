package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tubeaudio/internal/config"
	"tubeaudio/internal/services/ytdlp"
	"tubeaudio/internal/testsupport"
)

const (
	testVideoID = "dQw4w9WgXcQ"
	testURL     = "https://youtu.be/dQw4w9WgXcQ"
)

type fakeEngine struct {
	mu        sync.Mutex
	info      *ytdlp.Info
	extractFn func(url string) (*ytdlp.Info, error)
	downloads int
	version   string
}

func (e *fakeEngine) Extract(_ context.Context, url string) (*ytdlp.Info, error) {
	if e.extractFn != nil {
		return e.extractFn(url)
	}
	if e.info == nil {
		return nil, &ytdlp.EngineError{Code: ytdlp.CodeUnavailable, Message: "Video unavailable"}
	}
	return e.info, nil
}

func (e *fakeEngine) Download(_ context.Context, _ string, _ *ytdlp.Info, opts ytdlp.Options, _ func(ytdlp.Progress)) (string, error) {
	e.mu.Lock()
	e.downloads++
	e.mu.Unlock()
	path := opts.BasePath + "." + opts.AudioFormat
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (e *fakeEngine) Version(context.Context) (string, error) {
	if e.version == "" {
		return "", errors.New("not installed")
	}
	return e.version, nil
}

func (e *fakeEngine) downloadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.downloads
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	engine     *fakeEngine
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		engine: &fakeEngine{
			info:    &ytdlp.Info{ID: testVideoID, Title: "Never Gonna Give You Up", Duration: 213, ABR: 160},
			version: "2024.08.06",
		},
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommandWith(func(*config.Config) (engine, error) { return env.engine, nil })
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--log-level", "error"}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
