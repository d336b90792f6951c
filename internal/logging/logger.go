package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tubeaudio/internal/config"
)

// LogFilePattern matches the daily log files written inside paths.log_dir.
const LogFilePattern = "tubeaudio-*.log"

// LogFilePath returns the log file for day inside dir.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "tubeaudio-"+day.Format(logFileDateLayout)+".log")
}

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // "console" or "json"
	// Console receives the formatted stream. Nil means stderr.
	Console io.Writer
	// FilePath, when set, receives a JSON copy of every record regardless of Format.
	FilePath  string
	SessionID string
}

// New builds a logger from opts. Debug level adds source locations.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var handler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		handler = newPrettyHandler(console, levelVar, addSource)
	case "json":
		handler = newJSONHandler(console, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handler = newFanoutHandler(handler, newJSONHandler(file, levelVar, addSource))
	}

	if id := strings.TrimSpace(opts.SessionID); id != "" {
		handler = newSessionHandler(handler, id)
	}
	return slog.New(handler), nil
}

// NewFromConfig builds the CLI logger: the configured format on stderr plus
// today's JSON log file under paths.log_dir. levelOverride, when non-empty,
// replaces logging.level.
func NewFromConfig(cfg *config.Config, levelOverride, sessionID string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: levelOverride, SessionID: sessionID})
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(levelOverride) != "" {
		level = levelOverride
	}
	var filePath string
	if cfg.Paths.LogDir != "" {
		filePath = LogFilePath(cfg.Paths.LogDir, time.Now())
	}
	return New(Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		FilePath:  filePath,
		SessionID: sessionID,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
