package ytdlp

import (
	"encoding/json"
	"fmt"
)

// Info is the subset of the yt-dlp info dict tubeaudio consumes. Raw keeps the
// full document so it can be replayed with --load-info-json.
type Info struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Duration     float64  `json:"duration"`
	UploadDate   string   `json:"upload_date"`
	Uploader     string   `json:"uploader"`
	Channel      string   `json:"channel"`
	ViewCount    *int64   `json:"view_count"`
	LikeCount    *int64   `json:"like_count"`
	CommentCount *int64   `json:"comment_count"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Resolution   string   `json:"resolution"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	FPS          float64  `json:"fps"`
	ABR          float64  `json:"abr"`
	ACodec       string   `json:"acodec"`
	WebpageURL   string   `json:"webpage_url"`
	Type         string   `json:"_type"`

	Raw json.RawMessage `json:"-"`
}

// ParseInfo decodes a single yt-dlp info JSON document.
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode info json: %w", err)
	}
	if info.Type == "playlist" {
		return nil, fmt.Errorf("decode info json: got playlist, expected a single video")
	}
	info.Raw = append(json.RawMessage(nil), data...)
	return &info, nil
}
