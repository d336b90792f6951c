package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"tubeaudio/internal/fetch"
	"tubeaudio/internal/services"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id            int64
		videoID       string
		videoURL      string
		status        string
		title         sql.NullString
		audioPath     sql.NullString
		subtitlesJSON sql.NullString
		errorKind     sql.NullString
		errorMessage  sql.NullString
		attempts      int
		elapsed       float64
		correlationID sql.NullString
		metadataJSON  sql.NullString
		startedRaw    string
		finishedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&videoURL,
		&status,
		&title,
		&audioPath,
		&subtitlesJSON,
		&errorKind,
		&errorMessage,
		&attempts,
		&elapsed,
		&correlationID,
		&metadataJSON,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             id,
		VideoID:        videoID,
		VideoURL:       videoURL,
		Status:         fetch.Status(status),
		Title:          title.String,
		AudioPath:      audioPath.String,
		ErrorKind:      services.Kind(errorKind.String),
		ErrorMessage:   errorMessage.String,
		Attempts:       attempts,
		ElapsedSeconds: elapsed,
		CorrelationID:  correlationID.String,
		MetadataJSON:   metadataJSON.String,
	}
	if subtitlesJSON.Valid && subtitlesJSON.String != "" {
		if err := json.Unmarshal([]byte(subtitlesJSON.String), &entry.SubtitleFiles); err != nil {
			return nil, err
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		entry.FinishedAt = finished
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
