package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"tubeaudio/internal/fetch"
)

const entryColumns = "id, video_id, video_url, status, title, audio_path, subtitle_files_json, error_kind, error_message, attempts, elapsed_seconds, correlation_id, metadata_json, started_at, finished_at"

// Record stores result and returns the new row id.
func (s *Store) Record(ctx context.Context, result fetch.Result) (int64, error) {
	subtitles, err := marshalOptional(result.SubtitleFiles, len(result.SubtitleFiles) > 0)
	if err != nil {
		return 0, fmt.Errorf("encode subtitle files: %w", err)
	}
	metadata, err := marshalOptional(result.Metadata, len(result.Metadata) > 0)
	if err != nil {
		return 0, fmt.Errorf("encode metadata: %w", err)
	}

	finished := s.now().UTC()
	started := result.StartedAt
	if started.IsZero() {
		started = finished.Add(-result.Elapsed())
	}

	res, err := s.exec(ctx,
		`INSERT INTO runs (video_id, video_url, status, title, audio_path, subtitle_files_json, error_kind, error_message,
			attempts, elapsed_seconds, correlation_id, metadata_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.VideoID,
		result.VideoURL,
		string(result.Status),
		nullableString(result.Title),
		nullableString(result.AudioFilePath),
		subtitles,
		nullableString(string(result.ErrorKind)),
		nullableString(result.ErrorMessage),
		result.Attempts,
		result.ElapsedSeconds,
		nullableString(result.CorrelationID),
		metadata,
		formatTime(started),
		formatTime(finished),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if opts.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.VideoID != "" {
		clauses = append(clauses, "video_id = ?")
		args = append(args, opts.VideoID)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := "SELECT " + entryColumns + " FROM runs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY finished_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(orBackground(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Latest returns the most recent run for videoID, or nil when none exists.
func (s *Store) Latest(ctx context.Context, videoID string) (*Entry, error) {
	row := s.db.QueryRowContext(orBackground(ctx),
		"SELECT "+entryColumns+" FROM runs WHERE video_id = ? ORDER BY finished_at DESC, id DESC LIMIT 1", videoID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return entry, nil
}

// Prune deletes runs that finished before cutoff and returns the count removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM runs WHERE finished_at < ?", formatTime(cutoff.UTC()))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(orBackground(ctx), `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch fetch.Status(status) {
		case fetch.StatusSuccess:
			stats.Success += count
		case fetch.StatusError:
			stats.Error += count
		case fetch.StatusSkipped:
			stats.Skipped += count
		}
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the history database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat history database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("history database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(orBackground(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping history database: %w", err)
	}
	health.DatabaseReadable = true

	if err := s.db.QueryRowContext(connCtx, "PRAGMA user_version").Scan(&health.SchemaVersion); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}

	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM runs").Scan(&health.TotalRuns); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count runs: %w", err)
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")
	return health, nil
}

func marshalOptional(value any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
