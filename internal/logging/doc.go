// Package logging builds the slog loggers tubeaudio uses.
//
// Console output goes to stderr through a compact handler that puts the video
// ID and stage in the line header. Every record is also written as JSON to a
// daily file in paths.log_dir, and PruneDailyLogs removes files older than the
// retention window. WithContext and the session handler tag lines with the
// video ID, stage, attempt and correlation ID carried by a context.
package logging
