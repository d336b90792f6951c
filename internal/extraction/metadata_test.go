package extraction_test

import (
	"testing"
	"time"

	"tubeaudio/internal/extraction"
	"tubeaudio/internal/services/ytdlp"
)

func TestMetadataFromInfoOptionalFields(t *testing.T) {
	views := int64(0)
	meta := extraction.MetadataFromInfo(&ytdlp.Info{
		ID:         "dQw4w9WgXcQ",
		Title:      "Song",
		Channel:    "Channel",
		Duration:   212.5,
		UploadDate: "20091025",
		ViewCount:  &views,
		ABR:        129.5,
	})

	if meta.Uploader != "Channel" {
		t.Fatalf("expected channel fallback for uploader, got %q", meta.Uploader)
	}
	if d, ok := meta.Duration.Get(); !ok || d != 212500*time.Millisecond {
		t.Fatalf("unexpected duration %v", meta.Duration)
	}
	if v, ok := meta.ViewCount.Get(); !ok || v != 0 {
		t.Fatal("expected reported zero view count to be present")
	}
	if meta.LikeCount.IsPresent() || meta.FPS.IsPresent() {
		t.Fatal("expected unreported values to be absent")
	}

	out := meta.ToMap()
	if out["upload_date"] != "2009-10-25" || out["abr"] != 129.5 {
		t.Fatalf("unexpected map %v", out)
	}
	if _, ok := out["like_count"]; ok {
		t.Fatal("absent values must be omitted from the map")
	}
	if extraction.MetadataFromInfo(nil) != nil {
		t.Fatal("expected nil metadata for nil info")
	}
}
