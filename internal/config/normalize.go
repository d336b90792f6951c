package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeSubtitles()
	c.normalizeExtractor()
	c.normalizeNotifications()
	c.normalizeLogging()
	if c.Workers.Parallel <= 0 {
		c.Workers.Parallel = defaultWorkersParallel
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv(outputDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.History.SuccessLog != "" {
		if c.History.SuccessLog, err = ExpandPath(strings.TrimSpace(c.History.SuccessLog)); err != nil {
			return fmt.Errorf("history.success_log: %w", err)
		}
	}
	if c.History.ErrorLog != "" {
		if c.History.ErrorLog, err = ExpandPath(strings.TrimSpace(c.History.ErrorLog)); err != nil {
			return fmt.Errorf("history.error_log: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Format = strings.ToLower(strings.TrimSpace(c.Audio.Format))
	if c.Audio.Format == "" {
		c.Audio.Format = defaultAudioFormat
	}
}

// normalizeSubtitles lowercases and de-duplicates languages. An empty list is
// left empty so validation can reject enabled subtitles without languages.
func (c *Config) normalizeSubtitles() {
	langs := lo.FilterMap(c.Subtitles.Languages, func(lang string, _ int) (string, bool) {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		return normalized, normalized != ""
	})
	c.Subtitles.Languages = lo.Uniq(langs)
}

func (c *Config) normalizeExtractor() {
	c.Extractor.Binary = strings.TrimSpace(c.Extractor.Binary)
	if c.Extractor.Binary == "" {
		c.Extractor.Binary = defaultExtractorBinary
	}
	c.Extractor.FFmpegLocation = strings.TrimSpace(c.Extractor.FFmpegLocation)
	if c.Extractor.FFmpegLocation != "" {
		if expanded, err := ExpandPath(c.Extractor.FFmpegLocation); err == nil {
			c.Extractor.FFmpegLocation = expanded
		}
	}
	if c.Extractor.ProbeTimeout <= 0 {
		c.Extractor.ProbeTimeout = defaultProbeTimeout
	}
	if c.Extractor.DownloadTimeout <= 0 {
		c.Extractor.DownloadTimeout = defaultDownloadTimeout
	}
	c.Extractor.TimeRange.Start = strings.TrimSpace(c.Extractor.TimeRange.Start)
	c.Extractor.TimeRange.End = strings.TrimSpace(c.Extractor.TimeRange.End)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv(ntfyTopicEnv); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
