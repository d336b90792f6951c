package fetch_test

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"tubeaudio/internal/config"
	"tubeaudio/internal/extraction"
	"tubeaudio/internal/fetch"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/services"
	"tubeaudio/internal/services/ytdlp"
	"tubeaudio/internal/testsupport"
)

const infoJSON = `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":212,"abr":129.5,"_type":"video"}`

// scriptedYtdlp answers -J with infoJSON and hands each download invocation
// (1-based) to onDownload along with the -o base path.
type scriptedYtdlp struct {
	downloads  int
	onDownload func(n int, base string, stdout, stderr func(string)) error
}

func (s *scriptedYtdlp) Run(_ context.Context, _ string, args []string, onStdout, onStderr func(string)) error {
	if slices.Contains(args, "-J") {
		onStdout(infoJSON)
		return nil
	}
	s.downloads++
	base := ""
	if i := slices.Index(args, "-o"); i >= 0 && i+1 < len(args) {
		base = strings.TrimSuffix(args[i+1], ".%(ext)s")
	}
	return s.onDownload(s.downloads, base, onStdout, onStderr)
}

func failWith(line string) func(int, string, func(string), func(string)) error {
	return func(_ int, _ string, _, stderr func(string)) error {
		stderr("ERROR: [youtube] dQw4w9WgXcQ: " + line)
		return errors.New("exit status 1")
	}
}

func writeAudio(t *testing.T) func(int, string, func(string), func(string)) error {
	return func(_ int, base string, stdout, _ func(string)) error {
		path := base + ".mp3"
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Errorf("write %s: %v", path, err)
			return err
		}
		stdout("[download] 100% of 3.20MiB")
		stdout(path)
		return nil
	}
}

// newEngineFetcher runs the real yt-dlp adapter and gateway against the
// scripted executor on the OS filesystem.
func newEngineFetcher(t *testing.T, exec *scriptedYtdlp, cfg *config.Config) (*fetch.Fetcher, *[]time.Duration) {
	t.Helper()
	client, err := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("ytdlp.New: %v", err)
	}
	gateway := extraction.New(client, extraction.SettingsFromConfig(cfg), nil, logging.NewNop())
	var delays []time.Duration
	sleeper := func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return fetch.New(cfg, gateway, logging.NewNop(), fetch.WithSleeper(sleeper)), &delays
}

func TestRunDoesNotRetryUnavailableEngineFailures(t *testing.T) {
	for _, line := range []string{
		"Unable to download webpage: this video is private",
		"Private video. Sign in if you've been granted access to this video",
		"Unable to download webpage: HTTP Error 503: Service Unavailable",
		"This video has been removed by the uploader",
	} {
		t.Run(line, func(t *testing.T) {
			exec := &scriptedYtdlp{onDownload: failWith(line)}
			fetcher, delays := newEngineFetcher(t, exec, testsupport.NewConfig(t))

			result := fetcher.Run(context.Background(), canonicalURL)
			if result.Status != fetch.StatusError || result.ErrorKind != services.KindResourceUnavailable {
				t.Fatalf("expected resource_unavailable, got %s/%s: %s", result.Status, result.ErrorKind, result.ErrorMessage)
			}
			if result.Attempts != 1 || exec.downloads != 1 || len(*delays) != 0 {
				t.Fatalf("attempts=%d downloads=%d delays=%v, want a single attempt", result.Attempts, exec.downloads, *delays)
			}
		})
	}
}

func TestRunSucceedsOnLastAllowedAttemptAfterTimeouts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retry.MaxRetries = 3
	cfg.Retry.RetryDelaySeconds = 1

	success := writeAudio(t)
	timeout := failWith("Read timed out. (read timeout=20.0)")
	exec := &scriptedYtdlp{onDownload: func(n int, base string, stdout, stderr func(string)) error {
		if n <= cfg.Retry.MaxRetries {
			return timeout(n, base, stdout, stderr)
		}
		return success(n, base, stdout, stderr)
	}}
	fetcher, delays := newEngineFetcher(t, exec, cfg)

	result := fetcher.Run(context.Background(), canonicalURL)
	if result.Status != fetch.StatusSuccess {
		t.Fatalf("expected success, got %s/%s: %s", result.Status, result.ErrorKind, result.ErrorMessage)
	}
	if result.Attempts != cfg.Retry.MaxRetries+1 || exec.downloads != cfg.Retry.MaxRetries+1 {
		t.Fatalf("attempts=%d downloads=%d, want %d", result.Attempts, exec.downloads, cfg.Retry.MaxRetries+1)
	}
	if len(*delays) != cfg.Retry.MaxRetries {
		t.Fatalf("delays = %v, want %d", *delays, cfg.Retry.MaxRetries)
	}
	if !slices.IsSorted(*delays) {
		t.Fatalf("backoff delays decreased: %v", *delays)
	}
	if !strings.HasSuffix(result.AudioFilePath, "Never_Gonna_Give_You_Up.mp3") {
		t.Fatalf("unexpected audio path %q", result.AudioFilePath)
	}
}

func TestRunGivesUpAfterTimeoutsExhaustRetries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retry.MaxRetries = 2
	exec := &scriptedYtdlp{onDownload: failWith("Read timed out. (read timeout=20.0)")}
	fetcher, _ := newEngineFetcher(t, exec, cfg)

	result := fetcher.Run(context.Background(), canonicalURL)
	if result.Status != fetch.StatusError || result.ErrorKind != services.KindNetwork {
		t.Fatalf("expected network failure, got %s/%s", result.Status, result.ErrorKind)
	}
	if result.Attempts != 3 || exec.downloads != 3 {
		t.Fatalf("attempts=%d downloads=%d, want 3", result.Attempts, exec.downloads)
	}
}
