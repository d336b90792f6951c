package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tubeaudio/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TUBEAUDIO_OUTPUT_DIR", "")
	t.Setenv("TUBEAUDIO_NTFY_TOPIC", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "Music", "tubeaudio")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Audio.Format != "mp3" {
		t.Fatalf("expected mp3 default format, got %q", cfg.Audio.Format)
	}
	if cfg.Audio.Quality != 0 {
		t.Fatalf("expected best-available quality by default, got %d", cfg.Audio.Quality)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.RetryDelay() != 2*time.Second {
		t.Fatalf("expected 2s retry delay, got %s", cfg.RetryDelay())
	}
	if !cfg.Naming.PerVideoSubdir || !cfg.Naming.CleanFilenames {
		t.Fatal("expected per-video subdir and clean filenames enabled by default")
	}
	if cfg.Naming.MaxFilenameLength != 100 {
		t.Fatalf("unexpected max filename length: %d", cfg.Naming.MaxFilenameLength)
	}
	if cfg.Subtitles.Enabled {
		t.Fatal("expected subtitles disabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); err == nil {
		t.Fatal("expected output dir to be created lazily")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tubeaudio.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Audio struct {
			Format  string `toml:"format"`
			Quality int    `toml:"quality"`
		} `toml:"audio"`
		Subtitles struct {
			Enabled   bool     `toml:"enabled"`
			Languages []string `toml:"languages"`
		} `toml:"subtitles"`
		Retry struct {
			MaxRetries        int     `toml:"max_retries"`
			RetryDelaySeconds float64 `toml:"retry_delay_seconds"`
		} `toml:"retry"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "music")
	custom.Audio.Format = " FLAC "
	custom.Audio.Quality = 320
	custom.Subtitles.Enabled = true
	custom.Subtitles.Languages = []string{"EN", "de", "en", " "}
	custom.Retry.MaxRetries = 5
	custom.Retry.RetryDelaySeconds = 0.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("TUBEAUDIO_OUTPUT_DIR", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempDir, "music") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Audio.Format != "flac" {
		t.Fatalf("expected normalized format flac, got %q", cfg.Audio.Format)
	}
	if cfg.Audio.Quality != 320 {
		t.Fatalf("expected quality 320, got %d", cfg.Audio.Quality)
	}
	if strings.Join(cfg.Subtitles.Languages, ",") != "en,de" {
		t.Fatalf("unexpected subtitle languages: %v", cfg.Subtitles.Languages)
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Fatalf("expected 5 retries, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.RetryDelay() != 500*time.Millisecond {
		t.Fatalf("expected 500ms retry delay, got %s", cfg.RetryDelay())
	}
}

func TestEnvVarOverridesOutputDir(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tubeaudio.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\noutput_dir = \"/srv/file-music\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	envDir := filepath.Join(tempDir, "env-music")
	t.Setenv("TUBEAUDIO_OUTPUT_DIR", envDir)
	t.Setenv("TUBEAUDIO_NTFY_TOPIC", "https://ntfy.example/topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != envDir {
		t.Errorf("expected output dir from env, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path, false); !errors.Is(err, config.ErrSampleExists) {
		t.Fatalf("expected ErrSampleExists on second write, got %v", err)
	}
	if err := config.WriteSample(path, true); err != nil {
		t.Fatalf("WriteSample with overwrite failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "TUBEAUDIO_OUTPUT_DIR") {
		t.Fatalf("sample config missing env hint: %s", contents)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
	if cfg.Audio.Format != "mp3" {
		t.Fatalf("expected sample format mp3, got %q", cfg.Audio.Format)
	}
	if !strings.Contains(cfg.Paths.OutputDir, "tubeaudio") {
		t.Fatalf("expected output dir to contain tubeaudio, got %q", cfg.Paths.OutputDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unsupported format", func(c *config.Config) { c.Audio.Format = "wma" }},
		{"negative quality", func(c *config.Config) { c.Audio.Quality = -1 }},
		{"subtitles without languages", func(c *config.Config) {
			c.Subtitles.Enabled = true
			c.Subtitles.Languages = nil
		}},
		{"short filename limit", func(c *config.Config) { c.Naming.MaxFilenameLength = 8 }},
		{"negative retries", func(c *config.Config) { c.Retry.MaxRetries = -1 }},
		{"negative delay", func(c *config.Config) { c.Retry.RetryDelaySeconds = -0.5 }},
		{"zero download timeout", func(c *config.Config) { c.Extractor.DownloadTimeout = 0 }},
		{"bad section start", func(c *config.Config) { c.Extractor.TimeRange.Start = "ten" }},
		{"unknown log level", func(c *config.Config) { c.Logging.Level = "chatty" }},
		{"zero workers", func(c *config.Config) { c.Workers.Parallel = 0 }},
		{"empty output dir", func(c *config.Config) { c.Paths.OutputDir = " " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Extractor.TimeRange.Start = "1:30"
	cfg.Extractor.TimeRange.End = "01:02:03.5"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected time range to validate, got %v", err)
	}
}
