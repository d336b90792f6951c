package logging

import "strings"

// FormatSubject builds the video/stage subject string used in console output.
func FormatSubject(videoID, stage string) string {
	videoID = strings.TrimSpace(videoID)
	stage = strings.TrimSpace(stage)
	switch {
	case videoID != "" && stage != "":
		return videoID + " (" + stage + ")"
	case videoID != "":
		return videoID
	default:
		return stage
	}
}
