package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestBuildDownloadArgs(t *testing.T) {
	opts := Options{
		AudioFormat:       "opus",
		AudioQuality:      192,
		SampleRate:        48000,
		Mono:              true,
		Subtitles:         true,
		SubtitleLanguages: []string{"en", "de"},
		AutoSubtitles:     true,
		BasePath:          "/music/abc/Title_abc",
		WriteInfoJSON:     true,
		EmbedChapters:     true,
		SectionStart:      "1:30",
	}
	args := buildDownloadArgs(opts, "/opt/ffmpeg")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"--audio-format opus",
		"--audio-quality 192K",
		"-o /music/abc/Title_abc.%(ext)s",
		"--postprocessor-args ExtractAudio:-ar 48000 -ac 1",
		"--no-overwrites",
		"--sub-langs en,de",
		"--write-auto-subs",
		"--write-info-json",
		"--embed-chapters",
		"--download-sections *1:30-inf",
		"--ffmpeg-location /opt/ffmpeg",
		"--print after_move:filepath",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args %q", fragment, joined)
		}
	}
}

func TestBuildDownloadArgsDefaults(t *testing.T) {
	args := buildDownloadArgs(Options{AudioFormat: "mp3", BasePath: "/x/y", Overwrite: true}, "")
	if !slices.Contains(args, "--force-overwrites") {
		t.Fatalf("expected force overwrite: %v", args)
	}
	idx := slices.Index(args, "--audio-quality")
	if idx < 0 || args[idx+1] != "0" {
		t.Fatalf("expected best quality marker: %v", args)
	}
	for _, unwanted := range []string{"--write-subs", "--postprocessor-args", "--download-sections", "--ffmpeg-location"} {
		if slices.Contains(args, unwanted) {
			t.Fatalf("unexpected %s in %v", unwanted, args)
		}
	}
}

func TestSubtitlesRequireLanguages(t *testing.T) {
	args := buildDownloadArgs(Options{AudioFormat: "mp3", BasePath: "/x", Subtitles: true}, "")
	if slices.Contains(args, "--write-subs") {
		t.Fatalf("expected subtitles skipped without languages: %v", args)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line    string
		ok      bool
		phase   string
		percent float64
	}{
		{"[download]  42.5% of 3.20MiB at 1.2MiB/s ETA 00:02", true, PhaseDownload, 42.5},
		{"[download] 100% of 3.20MiB", true, PhaseDownload, 100},
		{"[download] Destination: /tmp/x.webm", true, PhaseDownload, -1},
		{"[ExtractAudio] Destination: /tmp/x.mp3", true, "ExtractAudio", -1},
		{"[youtube] dQw4w9WgXcQ: Downloading webpage", false, "", 0},
		{"/tmp/x.mp3", false, "", 0},
	}
	for _, tt := range tests {
		got, ok := parseProgress(tt.line)
		if ok != tt.ok {
			t.Errorf("parseProgress(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if ok && (got.Phase != tt.phase || got.Percent != tt.percent) {
			t.Errorf("parseProgress(%q) = %+v", tt.line, got)
		}
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name   string
		runErr error
		msg    string
		want   Code
	}{
		{"private", errors.New("exit status 1"), "Private video. Sign in", CodeUnavailable},
		{"removed", errors.New("exit status 1"), "This video has been removed by the uploader", CodeUnavailable},
		{"network", errors.New("exit status 1"), "Unable to download webpage: <urlopen error [Errno -3] Temporary failure in name resolution>", CodeNetwork},
		{"throttled", errors.New("exit status 1"), "HTTP Error 429: Too Many Requests", CodeNetwork},
		{"private behind webpage error", errors.New("exit status 1"), "Unable to download webpage: this video is private", CodeUnavailable},
		{"service unavailable", errors.New("exit status 1"), "Unable to download webpage: HTTP Error 503: Service Unavailable", CodeUnavailable},
		{"deleted", errors.New("exit status 1"), "Unable to download webpage: video deleted", CodeUnavailable},
		{"timed out", errors.New("exit status 1"), "Read timed out. (read timeout=20.0)", CodeNetwork},
		{"deadline", fmt.Errorf("wait command: %w", context.DeadlineExceeded), "", CodeTimeout},
		{"missing", errors.New(`start command: exec: "yt-dlp": executable file not found in $PATH`), "", CodeMissingTool},
		{"other", errors.New("exit status 1"), "Requested format is not available", CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeFor(tt.runErr, tt.msg); got != tt.want {
				t.Fatalf("codeFor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLastErrorLine(t *testing.T) {
	lines := []string{
		"ERROR: [youtube] abc: first",
		"ERROR: [youtube] dQw4w9WgXcQ: Video unavailable",
		"",
	}
	if got := lastErrorLine(lines); got != "Video unavailable" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := lastErrorLine([]string{"Traceback", "KeyError: 'x'"}); got != "KeyError: 'x'" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestLineWriterSplitsChunks(t *testing.T) {
	var lines []string
	w := &lineWriter{emit: func(line string) { lines = append(lines, line) }}
	for _, chunk := range []string{"[download]  1", "0.0% of 3MiB\r\n[download] 20", ".0%\n/tmp/out.mp3"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	w.flush()
	want := []string{"[download]  10.0% of 3MiB", "[download] 20.0%", "/tmp/out.mp3"}
	if !slices.Equal(lines, want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}
