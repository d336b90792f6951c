package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tubeaudio/internal/config"
	"tubeaudio/internal/extraction"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/preflight"
	"tubeaudio/internal/services/ytdlp"
)

// engine is what the CLI needs from the extraction engine: the gateway
// surface plus the version probe used by doctor.
type engine interface {
	extraction.Engine
	preflight.Versioner
}

type engineFactory func(cfg *config.Config) (engine, error)

func newYtdlpEngine(cfg *config.Config) (engine, error) {
	client, err := ytdlp.New(cfg.Extractor.Binary,
		ytdlp.WithFFmpegLocation(cfg.Extractor.FFmpegLocation),
		ytdlp.WithTimeouts(cfg.ProbeTimeout(), cfg.DownloadTimeout()),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool
	newEngine    engineFactory
	sessionID    string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool, factory engineFactory) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
		newEngine:    factory,
		sessionID:    uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the session logger on first use and prunes log files
// older than logging.retention_days.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := ""
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(cfg, level, c.sessionID)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneDailyLogs(nil, logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now())
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// gateway builds the extraction gateway for cfg, which may carry per-command
// overrides on top of the loaded config.
func (c *commandContext) gateway(cfg *config.Config, logger *slog.Logger) (*extraction.Gateway, engine, error) {
	eng, err := c.newEngine(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init extraction engine: %w", err)
	}
	return extraction.New(eng, extraction.SettingsFromConfig(cfg), nil, logger), eng, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
