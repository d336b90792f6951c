// Package deps locates the external programs a download shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/samber/lo"
)

// Tool is an external program tubeaudio runs.
type Tool struct {
	Name     string `json:"name"`
	Binary   string `json:"binary"`
	Purpose  string `json:"purpose"`
	Optional bool   `json:"optional,omitempty"`
	// Location, when set, is searched instead of PATH. It may be a directory or
	// a file, in which case the tool is looked up beside it.
	Location string `json:"location,omitempty"`
}

// Status is the lookup result for one Tool.
type Status struct {
	Tool
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// ForExtractor lists the tools a download needs: the extraction engine plus
// the ffmpeg pair its audio postprocessor runs. ffmpegLocation mirrors
// yt-dlp's --ffmpeg-location and may be empty.
func ForExtractor(binary, ffmpegLocation string) []Tool {
	return []Tool{
		{Name: "yt-dlp", Binary: binary, Purpose: "Resolves and downloads media"},
		{Name: "FFmpeg", Binary: "ffmpeg", Purpose: "Transcodes extracted audio", Location: ffmpegLocation},
		{Name: "FFprobe", Binary: "ffprobe", Purpose: "Inspects streams for yt-dlp postprocessors", Location: ffmpegLocation},
	}
}

// Check looks up every tool.
func Check(tools []Tool) []Status {
	return lo.Map(tools, func(t Tool, _ int) Status { return locate(t) })
}

// Missing names the required tools that were not found.
func Missing(statuses []Status) []string {
	return lo.FilterMap(statuses, func(s Status, _ int) (string, bool) {
		return s.Name, !s.Available && !s.Optional
	})
}

func locate(t Tool) Status {
	status := Status{Tool: t}
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		status.Detail = "command not configured"
		return status
	}

	if location := strings.TrimSpace(t.Location); location != "" {
		candidate := besideLocation(location, binary)
		status.Path = candidate
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			status.Available = true
			return status
		}
		status.Detail = fmt.Sprintf("binary %q not found at ffmpeg_location", candidate)
		return status
	}

	if strings.ContainsRune(binary, filepath.Separator) {
		status.Path = binary
	}
	path, err := exec.LookPath(executableName(binary))
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", binary)
		return status
	}
	status.Path = path
	status.Available = true
	return status
}

func besideLocation(location, binary string) string {
	dir := location
	if info, err := os.Stat(location); err == nil && !info.IsDir() {
		dir = filepath.Dir(location)
	}
	return filepath.Join(dir, executableName(binary))
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && filepath.Ext(base) == "" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
