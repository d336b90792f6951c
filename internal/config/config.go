package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Audio contains target artifact settings passed to the extraction engine.
type Audio struct {
	Format            string `toml:"format"`
	Quality           int    `toml:"quality"`     // kbps, 0 = best available
	MinQuality        int    `toml:"min_quality"` // kbps floor on the pre-download estimate, 0 = off
	SampleRate        int    `toml:"sample_rate"` // Hz, 0 = keep source rate
	ForceMono         bool   `toml:"force_mono"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Subtitles contains subtitle retrieval settings.
type Subtitles struct {
	Enabled       bool     `toml:"enabled"`
	AutoGenerated bool     `toml:"auto_generated"`
	Languages     []string `toml:"languages"`
}

// Naming controls the on-disk layout of downloaded artifacts.
type Naming struct {
	PerVideoSubdir    bool `toml:"per_video_subdir"`
	CleanFilenames    bool `toml:"clean_filenames"`
	MaxFilenameLength int  `toml:"max_filename_length"`
}

// Retry controls the bounded retry loop around a download attempt.
type Retry struct {
	MaxRetries        int     `toml:"max_retries"`
	RetryDelaySeconds float64 `toml:"retry_delay_seconds"`
}

// TimeRange restricts the download to a section of the resource.
type TimeRange struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// Extractor configures the external extraction engine.
type Extractor struct {
	Binary          string    `toml:"binary"`
	FFmpegLocation  string    `toml:"ffmpeg_location"`
	ProbeTimeout    int       `toml:"probe_timeout"`
	DownloadTimeout int       `toml:"download_timeout"`
	WriteInfoJSON   bool      `toml:"write_info_json"`
	EmbedChapters   bool      `toml:"embed_chapters"`
	TimeRange       TimeRange `toml:"time_range"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// History contains configuration for the run history database and result logs.
type History struct {
	Enabled    bool   `toml:"enabled"`
	SuccessLog string `toml:"success_log"`
	ErrorLog   string `toml:"error_log"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	OnSuccess      bool   `toml:"on_success"`
	OnError        bool   `toml:"on_error"`
}

// Workers bounds fan-out when several URLs are fetched in one invocation.
type Workers struct {
	Parallel int `toml:"parallel"`
}

// Config encapsulates all configuration values for tubeaudio.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Audio: target codec, bitrate, sample rate, quality floor, overwrite
//   - Subtitles: subtitle languages and auto-generated captions
//   - Naming: per-video subdirectories and filename cleaning
//   - Retry: retry bound and linear backoff base delay
//   - Extractor: yt-dlp binary, timeouts, and extra artifacts
//   - Logging: log format, level, and retention
//   - History: run history database and JSONL result logs
//   - Notifications: ntfy push notification settings
//   - Workers: parallel URL limit for the CLI
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Naming        Naming        `toml:"naming"`
	Retry         Retry         `toml:"retry"`
	Extractor     Extractor     `toml:"extractor"`
	Logging       Logging       `toml:"logging"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Workers       Workers       `toml:"workers"`
}

// EnsureDirectories creates the directories tubeaudio writes to outside of a download.
// The output directory is created lazily by the path planner.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RetryDelay returns the configured base backoff delay.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.RetryDelaySeconds * float64(time.Second))
}

// ProbeTimeout returns the metadata lookup timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Extractor.ProbeTimeout) * time.Second
}

// DownloadTimeout returns the per-attempt download timeout.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Extractor.DownloadTimeout) * time.Second
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory holding per-video run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}
