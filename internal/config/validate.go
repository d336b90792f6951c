package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var sectionTimestampPattern = regexp.MustCompile(`^(\d+:)?(\d+:)?\d+(\.\d+)?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workers.parallel":              c.Workers.Parallel,
	})
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if _, ok := supportedAudioFormats[c.Audio.Format]; !ok {
		return fmt.Errorf("audio.format %q is not supported", c.Audio.Format)
	}
	if c.Audio.Quality < 0 {
		return errors.New("audio.quality must be >= 0 (0 selects best available)")
	}
	if c.Audio.MinQuality < 0 {
		return errors.New("audio.min_quality must be >= 0")
	}
	if c.Audio.SampleRate < 0 {
		return errors.New("audio.sample_rate must be >= 0")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.Enabled && len(c.Subtitles.Languages) == 0 {
		return errors.New("subtitles.languages must include at least one language when subtitles.enabled is true")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.MaxFilenameLength < minMaxFilenameLength {
		return fmt.Errorf("naming.max_filename_length must be at least %d", minMaxFilenameLength)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must be >= 0")
	}
	if c.Retry.RetryDelaySeconds < 0 {
		return errors.New("retry.retry_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if err := ensurePositiveMap(map[string]int{
		"extractor.probe_timeout":    c.Extractor.ProbeTimeout,
		"extractor.download_timeout": c.Extractor.DownloadTimeout,
	}); err != nil {
		return err
	}
	for key, value := range map[string]string{
		"extractor.time_range.start": c.Extractor.TimeRange.Start,
		"extractor.time_range.end":   c.Extractor.TimeRange.End,
	} {
		if value != "" && !sectionTimestampPattern.MatchString(value) {
			return fmt.Errorf("%s must be a timestamp like 90, 1:30, or 01:02:03", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
