package artifacts

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"tubeaudio/internal/logging"
	"tubeaudio/internal/planner"
)

// SubtitleExt is the extension of subtitle sidecars.
const SubtitleExt = "vtt"

// Suffix patterns appended to the escaped base path to find partial downloads.
var partialPatterns = []string{".*", ".part*", ".temp*"}

// Extensions the audio postprocessor writes for each target codec. The first
// entry is the expected one; "best" keeps the source container.
var audioExtensions = map[string][]string{
	"aac":    {"m4a", "aac"},
	"alac":   {"m4a"},
	"vorbis": {"ogg"},
	"best":   {"m4a", "opus", "mp3", "ogg", "webm", "aac", "flac", "wav", "mka"},
}

// ExtensionsFor returns the candidate audio extensions for format, most
// likely first.
func ExtensionsFor(format string) []string {
	format = strings.ToLower(strings.TrimSpace(format))
	if exts, ok := audioExtensions[format]; ok {
		return exts
	}
	return []string{format}
}

// Options controls which artifacts are expected.
type Options struct {
	AudioFormat string
	Overwrite   bool
	Subtitles   bool
}

// Existing describes artifacts found before a download starts.
type Existing struct {
	AudioPath     string
	SubtitlePaths []string
	ShouldSkip    bool
}

// Verification describes artifacts found after a download attempt.
type Verification struct {
	AudioPath     string
	SubtitlePaths []string
	OK            bool
}

// CleanupResult contains the outcome of a best-effort cleanup.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Manager inspects and cleans download artifacts.
type Manager struct {
	fs     afero.Fs
	opts   Options
	logger *slog.Logger
}

// New constructs a Manager. A nil fs uses the OS filesystem.
func New(fs afero.Fs, opts Options, logger *slog.Logger) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{fs: fs, opts: opts, logger: logging.NewComponentLogger(logger, "artifacts")}
}

// AudioPath returns the audio artifact present for plan, or "" when none of
// the format's candidate extensions exist.
func (m *Manager) AudioPath(plan planner.Plan) string {
	for _, ext := range ExtensionsFor(m.opts.AudioFormat) {
		if path := plan.Path(ext); m.fileExists(path) {
			return path
		}
	}
	return ""
}

// CheckExisting reports whether plan's audio artifact already exists and the
// download can be skipped.
func (m *Manager) CheckExisting(plan planner.Plan) Existing {
	audio := m.AudioPath(plan)
	if audio == "" {
		return Existing{}
	}
	return Existing{
		AudioPath:     audio,
		SubtitlePaths: m.subtitles(plan),
		ShouldSkip:    !m.opts.Overwrite,
	}
}

// Verify confirms the expected artifacts exist after a download.
func (m *Manager) Verify(plan planner.Plan) Verification {
	audio := m.AudioPath(plan)
	if audio == "" {
		return Verification{}
	}
	return Verification{
		AudioPath:     audio,
		SubtitlePaths: m.subtitles(plan),
		OK:            true,
	}
}

// CleanupPartial removes files sharing plan's base path. Individual failures
// are logged and collected, never returned as an error.
func (m *Manager) CleanupPartial(ctx context.Context, plan planner.Plan) CleanupResult {
	result := CleanupResult{}
	logger := logging.WithContext(ctx, m.logger)
	base := escapeGlob(plan.Base)

	var matches []string
	for _, suffix := range partialPatterns {
		found, err := afero.Glob(m.fs, base+suffix)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: plan.Base + suffix, Error: err})
			continue
		}
		matches = append(matches, found...)
	}

	for _, path := range lo.Uniq(matches) {
		info, err := m.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := m.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove partial file", "partial_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "partial file remains on disk"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("removed partial file",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "partial_cleanup"),
		)
	}
	return result
}

// RemoveDirectoryIfEmpty removes dir and any empty directories beneath it,
// deepest first. Non-empty directories are left in place.
func (m *Manager) RemoveDirectoryIfEmpty(ctx context.Context, dir string) CleanupResult {
	result := CleanupResult{}
	logger := logging.WithContext(ctx, m.logger)
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	var dirs []string
	err := afero.Walk(m.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		return result
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	for _, path := range dirs {
		empty, err := afero.IsEmpty(m.fs, path)
		if err != nil || !empty {
			continue
		}
		if err := m.fs.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove empty directory", "directory_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "empty directory remains in output_dir"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("removed empty directory",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "directory_cleanup"),
		)
	}
	return result
}

func (m *Manager) subtitles(plan planner.Plan) []string {
	if !m.opts.Subtitles {
		return nil
	}
	matches, err := afero.Glob(m.fs, escapeGlob(plan.Base)+"*."+SubtitleExt)
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return lo.Filter(matches, func(path string, _ int) bool {
		return m.fileExists(path)
	})
}

func (m *Manager) fileExists(path string) bool {
	info, err := m.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// escapeGlob quotes filepath.Match metacharacters so titles containing
// brackets or asterisks are matched literally. Metacharacters become
// one-rune classes, which filepath.Match honors on every OS; a backslash is
// only escaped where it is not the path separator.
func escapeGlob(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for _, r := range path {
		switch {
		case r == '*' || r == '?' || r == '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		case r == '\\' && runtime.GOOS != "windows":
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
