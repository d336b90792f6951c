package history

import (
	"time"

	"tubeaudio/internal/fetch"
	"tubeaudio/internal/services"
)

// Entry is one recorded run.
type Entry struct {
	ID             int64         `json:"id"`
	VideoID        string        `json:"video_id"`
	VideoURL       string        `json:"video_url"`
	Status         fetch.Status  `json:"status"`
	Title          string        `json:"title,omitempty"`
	AudioPath      string        `json:"audio_file_path,omitempty"`
	SubtitleFiles  []string      `json:"subtitle_files,omitempty"`
	ErrorKind      services.Kind `json:"error_kind,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	Attempts       int           `json:"attempts"`
	ElapsedSeconds float64       `json:"elapsed"`
	CorrelationID  string        `json:"correlation_id,omitempty"`
	MetadataJSON   string        `json:"-"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// Elapsed returns the run's wall time.
func (e Entry) Elapsed() time.Duration {
	return time.Duration(e.ElapsedSeconds * float64(time.Second))
}

// ListOptions filters List results. Zero values mean no filter; Limit <= 0
// uses DefaultListLimit.
type ListOptions struct {
	Status  fetch.Status
	VideoID string
	Limit   int
}

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// Stats counts recorded runs by status.
type Stats struct {
	Total   int
	Success int
	Error   int
	Skipped int
}

// DatabaseHealth describes the history database for diagnostics.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	IntegrityCheck   bool
	SchemaVersion    int
	TotalRuns        int
	Error            string
}
