package fetch

import (
	"time"

	"tubeaudio/internal/extraction"
	"tubeaudio/internal/services"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// UnknownVideoID is reported when the URL could not be resolved.
const UnknownVideoID = "unknown"

// Outcome is one of Success, Skipped, or Failed.
type Outcome interface {
	Status() Status
}

// Success is a verified download.
type Success struct {
	AudioPath     string
	SubtitlePaths []string
	Metadata      *extraction.Metadata
}

// Skipped is a run that found its artifacts already in place.
type Skipped struct {
	Reason        string
	AudioPath     string
	SubtitlePaths []string
}

// Failed is a classified failure.
type Failed struct {
	Kind    services.Kind
	Message string
	Err     error
}

func (Success) Status() Status { return StatusSuccess }
func (Skipped) Status() Status { return StatusSkipped }
func (Failed) Status() Status { return StatusError }

// Result is the structured report of one run.
type Result struct {
	Status         Status         `json:"status"`
	VideoID        string         `json:"video_id"`
	VideoURL       string         `json:"video_url"`
	AudioFilePath  string         `json:"audio_file_path,omitempty"`
	SubtitleFiles  []string       `json:"subtitle_files,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	ErrorKind      services.Kind  `json:"error_kind,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Duration       int            `json:"duration,omitempty"`
	Title          string         `json:"title,omitempty"`
	Attempts       int            `json:"attempts"`
	ElapsedSeconds float64        `json:"elapsed"`
	CorrelationID  string         `json:"correlation_id,omitempty"`
	StartedAt      time.Time      `json:"started_at"`

	Outcome Outcome `json:"-"`
}

// Succeeded reports whether the run produced a verified download.
func (r Result) Succeeded() bool { return r.Status == StatusSuccess }

// Failed reports whether the run ended in a classified failure.
func (r Result) Failed() bool { return r.Status == StatusError }

// Elapsed returns the wall time of the run.
func (r Result) Elapsed() time.Duration {
	return time.Duration(r.ElapsedSeconds * float64(time.Second))
}

// ToMap returns a flat mapping of the result. Optional fields are present
// with nil values when unset so consumers see a stable key set.
func (r Result) ToMap() map[string]any {
	out := map[string]any{
		"status":          string(r.Status),
		"video_id":        r.VideoID,
		"video_url":       r.VideoURL,
		"audio_file_path": nilIfEmpty(r.AudioFilePath),
		"subtitle_files":  r.SubtitleFiles,
		"error_message":   nilIfEmpty(r.ErrorMessage),
		"error_kind":      nilIfEmpty(string(r.ErrorKind)),
		"metadata":        r.Metadata,
		"duration":        nil,
		"title":           nilIfEmpty(r.Title),
		"attempts":        r.Attempts,
		"elapsed":         r.ElapsedSeconds,
	}
	if r.Duration > 0 {
		out["duration"] = r.Duration
	}
	return out
}

func nilIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
