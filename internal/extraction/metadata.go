package extraction

import (
	"strings"
	"time"

	"github.com/samber/mo"

	"tubeaudio/internal/services/ytdlp"
)

const uploadDateLayout = "20060102"

// Metadata describes a resource as reported by the engine before download.
// Optional scalars distinguish "not reported" from zero.
type Metadata struct {
	ID           string
	Title        string
	Duration     mo.Option[time.Duration]
	UploadDate   mo.Option[time.Time]
	Uploader     string
	ViewCount    mo.Option[int64]
	LikeCount    mo.Option[int64]
	CommentCount mo.Option[int64]
	Description  string
	Tags         []string
	Resolution   string
	FPS          mo.Option[float64]
	// AudioBitrate is the engine's kbps estimate for the selected audio
	// stream. It is approximate and may differ from the transcoded output.
	AudioBitrate mo.Option[float64]
	AudioCodec   string
	WebpageURL   string
}

// MetadataFromInfo converts engine info into Metadata.
func MetadataFromInfo(info *ytdlp.Info) *Metadata {
	if info == nil {
		return nil
	}
	meta := &Metadata{
		ID:           info.ID,
		Title:        strings.TrimSpace(info.Title),
		Uploader:     firstNonEmpty(info.Uploader, info.Channel),
		Description:  info.Description,
		Resolution:   info.Resolution,
		AudioCodec:   info.ACodec,
		WebpageURL:   info.WebpageURL,
		ViewCount:    mo.PointerToOption(info.ViewCount),
		LikeCount:    mo.PointerToOption(info.LikeCount),
		CommentCount: mo.PointerToOption(info.CommentCount),
	}
	if len(info.Tags) > 0 {
		meta.Tags = append([]string(nil), info.Tags...)
	}
	if info.Duration > 0 {
		meta.Duration = mo.Some(time.Duration(info.Duration * float64(time.Second)))
	}
	if ts, err := time.Parse(uploadDateLayout, strings.TrimSpace(info.UploadDate)); err == nil {
		meta.UploadDate = mo.Some(ts)
	}
	if info.FPS > 0 {
		meta.FPS = mo.Some(info.FPS)
	}
	if info.ABR > 0 {
		meta.AudioBitrate = mo.Some(info.ABR)
	}
	return meta
}

// ToMap flattens metadata for result serialization. Absent optional values
// are omitted.
func (m *Metadata) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := map[string]any{
		"id":    m.ID,
		"title": m.Title,
	}
	setString(out, "uploader", m.Uploader)
	setString(out, "description", m.Description)
	setString(out, "resolution", m.Resolution)
	setString(out, "audio_codec", m.AudioCodec)
	setString(out, "webpage_url", m.WebpageURL)
	if len(m.Tags) > 0 {
		out["tags"] = m.Tags
	}
	if d, ok := m.Duration.Get(); ok {
		out["duration"] = d.Seconds()
	}
	if ts, ok := m.UploadDate.Get(); ok {
		out["upload_date"] = ts.Format(time.DateOnly)
	}
	if v, ok := m.ViewCount.Get(); ok {
		out["view_count"] = v
	}
	if v, ok := m.LikeCount.Get(); ok {
		out["like_count"] = v
	}
	if v, ok := m.CommentCount.Get(); ok {
		out["comment_count"] = v
	}
	if v, ok := m.FPS.Get(); ok {
		out["fps"] = v
	}
	if v, ok := m.AudioBitrate.Get(); ok {
		out["abr"] = v
	}
	return out
}

func setString(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
