package logging

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const logFileDateLayout = "20060102"

// PruneDailyLogs removes daily log files in dir whose day is more than
// retentionDays before now and returns how many were removed. The day comes
// from the file name; files whose name does not parse fall back to their
// modification time. Today's file is never removed. A retentionDays value of
// 0 disables pruning.
func PruneDailyLogs(fs afero.Fs, logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	matches, err := afero.Glob(fs, filepath.Join(dir, LogFilePattern))
	if err != nil {
		return 0
	}
	cutoff := startOfDay(now).AddDate(0, 0, -retentionDays)
	current := LogFilePath(dir, now)

	removed := 0
	for _, path := range matches {
		if path == current {
			continue
		}
		day, ok := logFileDay(fs, path)
		if !ok || !day.Before(cutoff) {
			continue
		}
		if err := fs.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Info("old log files pruned",
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}

func logFileDay(fs afero.Fs, path string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "tubeaudio-"), ".log")
	if day, err := time.ParseInLocation(logFileDateLayout, stamp, time.Local); err == nil {
		return day, true
	}
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return startOfDay(info.ModTime()), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
