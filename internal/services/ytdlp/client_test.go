package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tubeaudio/internal/services/ytdlp"
)

type stubExecutor struct {
	stdout []string
	stderr []string
	err    error
	calls  int
	args   [][]string
	before func(args []string)
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	s.calls++
	cloned := append([]string(nil), args...)
	s.args = append(s.args, cloned)
	if s.before != nil {
		s.before(cloned)
	}
	for _, line := range s.stdout {
		onStdout(line)
	}
	for _, line := range s.stderr {
		onStderr(line)
	}
	return s.err
}

const sampleInfo = `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":212,"upload_date":"20091025","uploader":"Rick Astley","view_count":1500000000,"abr":129.5,"tags":["pop","80s"],"_type":"video"}`

func TestExtractParsesMetadata(t *testing.T) {
	exec := &stubExecutor{stdout: []string{sampleInfo}}
	client, err := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	info, err := client.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if info.ID != "dQw4w9WgXcQ" || info.Title != "Never Gonna Give You Up" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ABR != 129.5 {
		t.Fatalf("expected abr 129.5, got %v", info.ABR)
	}
	if info.ViewCount == nil || *info.ViewCount != 1500000000 {
		t.Fatalf("unexpected view count: %v", info.ViewCount)
	}
	if info.LikeCount != nil {
		t.Fatal("expected absent like count to stay nil")
	}
	if len(info.Raw) == 0 {
		t.Fatal("expected raw json retained")
	}
	args := exec.args[0]
	if !slices.Contains(args, "-J") || args[len(args)-1] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestExtractReturnsEngineError(t *testing.T) {
	exec := &stubExecutor{
		stderr: []string{"WARNING: something", "ERROR: [youtube] dQw4w9WgXcQ: Private video. Sign in if you've been granted access to this video"},
		err:    errors.New("exit status 1"),
	}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))

	_, err := client.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	var engineErr *ytdlp.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineError, got %T %v", err, err)
	}
	if engineErr.Code != ytdlp.CodeUnavailable {
		t.Fatalf("expected unavailable code, got %s", engineErr.Code)
	}
	if !strings.HasPrefix(engineErr.Message, "Private video") {
		t.Fatalf("expected extractor tag stripped, got %q", engineErr.Message)
	}
}

func TestExtractRejectsEmptyOutput(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{}))
	_, err := client.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	var engineErr *ytdlp.EngineError
	if !errors.As(err, &engineErr) || engineErr.Code != ytdlp.CodeBadMetadata {
		t.Fatalf("expected bad metadata error, got %v", err)
	}
}

func TestDownloadErrorsWhenNoOutputProduced(t *testing.T) {
	base := filepath.Join(t.TempDir(), "song")
	exec := &stubExecutor{stdout: []string{"[download]  50.0% of 3.2MiB", base + ".mp3"}}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))

	_, err := client.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil, ytdlp.Options{AudioFormat: "mp3", BasePath: base}, nil)
	var engineErr *ytdlp.EngineError
	if !errors.As(err, &engineErr) || engineErr.Code != ytdlp.CodeNoOutput {
		t.Fatalf("expected no output error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("expected 'no output file' error, got: %v", err)
	}
}

func TestDownloadReportsPathAndProgress(t *testing.T) {
	base := filepath.Join(t.TempDir(), "song")
	target := base + ".mp3"
	exec := &stubExecutor{
		stdout: []string{"[download]  10.0% of 3.2MiB", "[download] 100.0% of 3.2MiB", "[ExtractAudio] Destination: " + target, target},
		before: func([]string) {
			_ = os.WriteFile(target, []byte("audio"), 0o644)
		},
	}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))

	var updates []ytdlp.Progress
	info := &ytdlp.Info{ID: "dQw4w9WgXcQ", Raw: []byte(sampleInfo)}
	path, err := client.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", info, ytdlp.Options{AudioFormat: "mp3", BasePath: base}, func(p ytdlp.Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if path != target {
		t.Fatalf("unexpected path %q", path)
	}
	if len(updates) != 3 || updates[1].Percent != 100 || updates[2].Phase != "ExtractAudio" {
		t.Fatalf("unexpected progress updates: %+v", updates)
	}
	args := exec.args[0]
	idx := slices.Index(args, "--load-info-json")
	if idx < 0 || idx+1 >= len(args) {
		t.Fatalf("expected --load-info-json in args: %v", args)
	}
	if _, err := os.Stat(args[idx+1]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp info file removed, got err=%v", err)
	}
}

func TestDownloadRequiresBasePath(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{}))
	if _, err := client.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil, ytdlp.Options{}, nil); err == nil {
		t.Fatal("expected error without base path")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
