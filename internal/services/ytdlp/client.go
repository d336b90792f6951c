package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FormatSelector requests the best audio-only stream, falling back to the best
// combined stream for sources without one.
const FormatSelector = "bestaudio/best"

// PhaseDownload is the Progress phase for transfer lines.
const PhaseDownload = "download"

// Options describes the artifact yt-dlp should produce.
type Options struct {
	AudioFormat       string
	AudioQuality      int // kbps, 0 = best
	SampleRate        int
	Mono              bool
	Subtitles         bool
	SubtitleLanguages []string
	AutoSubtitles     bool
	BasePath          string // output path without extension
	Overwrite         bool
	WriteInfoJSON     bool
	EmbedChapters     bool
	SectionStart      string
	SectionEnd        string
}

// Progress captures a yt-dlp status line. Phase is the bracketed tag yt-dlp
// prints ("download", "ExtractAudio", ...). Percent is -1 when the line carries
// no percentage.
type Progress struct {
	Phase   string
	Percent float64
	Message string
}

// Postprocessor phases reported through Progress after the download finishes.
var postprocessPhases = map[string]struct{}{
	"ExtractAudio":   {},
	"EmbedSubtitle":  {},
	"Metadata":       {},
	"ModifyChapters": {},
	"FixupM4a":       {},
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithFFmpegLocation points yt-dlp at a specific ffmpeg binary or directory.
func WithFFmpegLocation(path string) Option {
	return func(c *Client) {
		c.ffmpegLocation = strings.TrimSpace(path)
	}
}

// WithTimeouts overrides the metadata and download timeouts.
func WithTimeouts(probe, download time.Duration) Option {
	return func(c *Client) {
		c.probeTimeout = probe
		c.downloadTimeout = download
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	ffmpegLocation  string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	exec            Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// Extract fetches metadata for url without downloading media. The reported
// abr is the estimate for the stream FormatSelector would pick.
func (c *Client) Extract(ctx context.Context, url string) (*Info, error) {
	ctx, cancel := withTimeout(ctx, c.probeTimeout)
	defer cancel()

	args := []string{"-J", "--no-playlist", "--no-warnings", "-f", FormatSelector}
	if c.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegLocation)
	}
	args = append(args, "--", url)

	var stdout strings.Builder
	stderr := &lineBuffer{}
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		stdout.WriteString(line)
		stdout.WriteByte('\n')
	}, stderr.add)
	if err != nil {
		return nil, newEngineError(err, stderr.snapshot())
	}
	payload := strings.TrimSpace(stdout.String())
	if payload == "" {
		return nil, &EngineError{Code: CodeBadMetadata, Message: "yt-dlp returned no metadata", Stderr: stderr.snapshot()}
	}
	info, err := ParseInfo([]byte(payload))
	if err != nil {
		return nil, &EngineError{Code: CodeBadMetadata, Message: err.Error(), Err: err}
	}
	return info, nil
}

// Download runs the extraction and returns the final artifact path. When info
// carries raw metadata it is replayed with --load-info-json instead of
// resolving url again.
func (c *Client) Download(ctx context.Context, url string, info *Info, opts Options, progress func(Progress)) (string, error) {
	if strings.TrimSpace(opts.BasePath) == "" {
		return "", errors.New("output base path required")
	}
	ctx, cancel := withTimeout(ctx, c.downloadTimeout)
	defer cancel()

	source := []string{"--", url}
	if info != nil && len(info.Raw) > 0 {
		path, cleanup, err := writeInfoFile(info)
		if err != nil {
			return "", err
		}
		defer cleanup()
		source = []string{"--load-info-json", path}
	}
	args := append(buildDownloadArgs(opts, c.ffmpegLocation), source...)

	var finalPath string
	stderr := &lineBuffer{}
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if update, ok := parseProgress(line); ok {
			if progress != nil {
				progress(update)
			}
			return
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "[") {
			finalPath = trimmed
		}
	}, stderr.add)
	if err != nil {
		return "", newEngineError(err, stderr.snapshot())
	}

	if finalPath == "" {
		return "", &EngineError{Code: CodeNoOutput, Message: "yt-dlp did not report an output file", Stderr: stderr.snapshot()}
	}
	if _, err := os.Stat(finalPath); errors.Is(err, os.ErrNotExist) {
		return "", &EngineError{Code: CodeNoOutput, Message: fmt.Sprintf("yt-dlp produced no output file at %s", finalPath)}
	}
	return finalPath, nil
}

// Version returns the yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	stderr := &lineBuffer{}
	if err := c.exec.Run(ctx, c.binary, []string{"--version"}, func(line string) {
		if version == "" {
			version = strings.TrimSpace(line)
		}
	}, stderr.add); err != nil {
		return "", newEngineError(err, stderr.snapshot())
	}
	return version, nil
}

func buildDownloadArgs(opts Options, ffmpegLocation string) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", FormatSelector,
		"-x",
		"--audio-format", opts.AudioFormat,
		"--audio-quality", audioQuality(opts.AudioQuality),
		"-o", opts.BasePath + ".%(ext)s",
		"--newline",
		"--progress",
		"--print", "after_move:filepath",
		"--no-simulate",
	}
	if ppArgs := postprocessorArgs(opts); ppArgs != "" {
		args = append(args, "--postprocessor-args", "ExtractAudio:"+ppArgs)
	}
	if opts.Overwrite {
		args = append(args, "--force-overwrites")
	} else {
		args = append(args, "--no-overwrites")
	}
	if opts.Subtitles && len(opts.SubtitleLanguages) > 0 {
		args = append(args,
			"--write-subs",
			"--sub-langs", strings.Join(opts.SubtitleLanguages, ","),
			"--sub-format", "vtt/best",
			"--convert-subs", "vtt",
		)
		if opts.AutoSubtitles {
			args = append(args, "--write-auto-subs")
		}
	}
	if opts.WriteInfoJSON {
		args = append(args, "--write-info-json")
	}
	if opts.EmbedChapters {
		args = append(args, "--embed-chapters")
	}
	if opts.SectionStart != "" || opts.SectionEnd != "" {
		start := opts.SectionStart
		if start == "" {
			start = "0"
		}
		end := opts.SectionEnd
		if end == "" {
			end = "inf"
		}
		args = append(args, "--download-sections", "*"+start+"-"+end)
	}
	if ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", ffmpegLocation)
	}
	return args
}

func audioQuality(kbps int) string {
	if kbps <= 0 {
		return "0"
	}
	return strconv.Itoa(kbps) + "K"
}

func postprocessorArgs(opts Options) string {
	var parts []string
	if opts.SampleRate > 0 {
		parts = append(parts, "-ar "+strconv.Itoa(opts.SampleRate))
	}
	if opts.Mono {
		parts = append(parts, "-ac 1")
	}
	return strings.Join(parts, " ")
}

// parseProgress reads "[download]  42.5% of ..." lines produced with --newline
// and the postprocessor lines that follow them.
func parseProgress(line string) (Progress, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return Progress{}, false
	}
	tag, rest, ok := strings.Cut(line[1:], "]")
	if !ok {
		return Progress{}, false
	}
	if _, known := postprocessPhases[tag]; !known && tag != PhaseDownload {
		return Progress{}, false
	}
	update := Progress{Phase: tag, Percent: -1, Message: strings.TrimSpace(rest)}
	if tag != PhaseDownload {
		return update, true
	}
	pct, _, found := strings.Cut(update.Message, "%")
	if !found {
		return update, true
	}
	if percent, err := strconv.ParseFloat(strings.TrimSpace(pct), 64); err == nil {
		update.Percent = percent
	}
	return update, true
}

func writeInfoFile(info *Info) (string, func(), error) {
	file, err := os.CreateTemp("", "tubeaudio-info-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("create info file: %w", err)
	}
	path := file.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := file.Write(info.Raw); err != nil {
		file.Close()
		cleanup()
		return "", nil, fmt.Errorf("write info file: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close info file: %w", err)
	}
	return path, cleanup, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// lineBuffer collects stderr lines from concurrent scanners.
type lineBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *lineBuffer) add(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
}

func (b *lineBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}
