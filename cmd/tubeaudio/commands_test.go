package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubeaudio/internal/history"
	"tubeaudio/internal/services/ytdlp"
)

func TestValidatePrintsCanonicalURLs(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "validate", testURL, "https://example.com/video")
	if !errors.Is(err, errRunFailed) {
		t.Fatalf("expected errRunFailed for invalid URL, got %v", err)
	}
	requireContains(t, out, "https://www.youtube.com/watch?v="+testVideoID)
	requireContains(t, out, "invalid\thttps://example.com/video")
}

func TestInfoPrintsMetadata(t *testing.T) {
	env := setupCLITestEnv(t)
	views := int64(1_500_000)
	env.engine.info.ViewCount = &views

	out, err := env.run(t, "info", testURL)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "Never Gonna Give You Up")
	requireContains(t, out, "1,500,000")
	requireContains(t, out, "160 kbps")
	if env.engine.downloadCount() != 0 {
		t.Fatal("info must not download")
	}

	out, err = env.run(t, "--json", "info", testURL)
	if err != nil {
		t.Fatalf("info --json: %v", err)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["id"] != testVideoID {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

func TestInfoReportsUnavailableVideo(t *testing.T) {
	env := setupCLITestEnv(t)
	env.engine.info = nil

	_, err := env.run(t, "info", testURL)
	if err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestHistoryListShowAndPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "fetch", testURL); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, testVideoID)
	requireContains(t, out, "Success")

	out, err = env.run(t, "history", "--status", "error")
	if err != nil {
		t.Fatalf("history --status error: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, err := env.run(t, "history", "--status", "bogus"); err == nil {
		t.Fatal("expected invalid status filter to fail")
	}

	out, err = env.run(t, "--json", "history", "show", testVideoID)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	var entry history.Entry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.VideoID != testVideoID || entry.AudioPath == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	out, err = env.run(t, "history", "prune", "--older-than", "1d")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 0 run(s)")

	time.Sleep(10 * time.Millisecond)
	out, err = env.run(t, "history", "prune", "--older-than", "0s")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 run(s)")

	out, err = env.run(t, "history", "stats")
	if err != nil {
		t.Fatalf("history stats: %v", err)
	}
	requireContains(t, out, "Total")
}

func TestParseAge(t *testing.T) {
	cases := map[string]time.Duration{
		"30d": 30 * 24 * time.Hour,
		"12h": 12 * time.Hour,
		"0s":  0,
	}
	for input, want := range cases {
		got, err := parseAge(input)
		if err != nil || got != want {
			t.Errorf("parseAge(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	for _, input := range []string{"", "-1d", "soon", "xd"} {
		if _, err := parseAge(input); err == nil {
			t.Errorf("parseAge(%q) expected error", input)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = env.run(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, err := env.run(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, env.cfg.Paths.OutputDir)
}

func TestDoctorPassesWithStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "yt-dlp")
	requireContains(t, out, "FFprobe")
	requireContains(t, out, "version 2024.08.06")
	requireContains(t, out, "History database")
}

func TestDoctorFailsWhenEngineMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.engine.version = ""

	out, err := env.run(t, "--json", "doctor")
	if !errors.Is(err, errRunFailed) {
		t.Fatalf("expected errRunFailed, got %v", err)
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report["ok"] != false {
		t.Fatalf("expected ok=false, got %v", report["ok"])
	}
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	t.Setenv("TUBEAUDIO_NTFY_TOPIC", "")
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "test-notify"); !errors.Is(err, errNoTopic) {
		t.Fatalf("expected errNoTopic, got %v", err)
	}
}

func TestRenderMetadataFallsBackToCanonicalURL(t *testing.T) {
	env := setupCLITestEnv(t)
	env.engine.info = &ytdlp.Info{ID: testVideoID, Title: "No URL"}

	out, err := env.run(t, "info", testURL)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "https://www.youtube.com/watch?v="+testVideoID)
}
