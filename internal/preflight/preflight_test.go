package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubeaudio/internal/config"
)

type stubVersioner struct {
	version string
	err     error
}

func (s stubVersioner) Version(context.Context) (string, error) { return s.version, s.err }

func TestDirectoryChecks(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		check  func(name, path string) Result
		path   string
		passed bool
		detail string
	}{
		{"writable dir", CheckDirectoryAccess, root, true, "read/write ok"},
		{"missing dir", CheckDirectoryAccess, filepath.Join(root, "nope"), false, "does not exist"},
		{"file instead of dir", CheckDirectoryAccess, file, false, "is not a directory"},
		{"output dir to be created", CheckOutputDirectory, filepath.Join(root, "music", "tubeaudio"), true, "will be created"},
		{"output dir below a file", CheckOutputDirectory, filepath.Join(file, "music"), false, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.check("dir", tc.path)
			if r.Passed != tc.passed || !strings.Contains(r.Detail, tc.detail) {
				t.Fatalf("got %+v, want passed=%v detail containing %q", r, tc.passed, tc.detail)
			}
		})
	}
}

func TestCheckExtractor(t *testing.T) {
	if r := CheckExtractor(context.Background(), stubVersioner{version: "2024.08.06"}); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckExtractor(context.Background(), stubVersioner{err: errors.New("boom")}); r.Passed || r.Detail != "boom" {
		t.Fatalf("expected failure with detail, got %+v", r)
	}
	if r := CheckExtractor(context.Background(), stubVersioner{}); r.Passed {
		t.Fatal("expected failure for empty version")
	}
}

func TestCheckNtfy_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckNtfy(context.Background(), srv.URL+"/topic")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckNtfy_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := CheckNtfy(context.Background(), srv.URL+"/topic")
	if result.Passed {
		t.Fatal("expected failure for forbidden topic")
	}
}

func TestCheckNtfy_MissingTopic(t *testing.T) {
	if result := CheckNtfy(context.Background(), "  "); result.Passed {
		t.Fatal("expected failure for missing topic")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "music")
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()

	results := RunAll(context.Background(), &cfg, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("Failed reported a failure for passing results")
	}
}

func TestRunAll_IncludesEngineAndNtfy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.StateDir = t.TempDir()
	cfg.Notifications.NtfyTopic = srv.URL + "/topic"

	results := RunAll(context.Background(), &cfg, stubVersioner{version: "2024.08.06"})
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = r.Passed
	}
	if !names["Extraction engine"] || !names["ntfy"] {
		t.Fatalf("expected engine and ntfy checks to pass: %+v", results)
	}
	if names["Log directory"] {
		t.Fatal("expected missing log directory to fail")
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report the missing log directory")
	}
}

func TestCheckSystemDepsIncludesFFmpegTools(t *testing.T) {
	cfg := config.Default()
	cfg.Extractor.Binary = "definitely-not-a-real-extractor"
	cfg.Extractor.FFmpegLocation = t.TempDir()

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.Available {
			t.Errorf("%s unexpectedly available", s.Name)
		}
	}
}
