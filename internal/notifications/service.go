package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"tubeaudio/internal/config"
	"tubeaudio/internal/textutil"
)

const (
	userAgent      = "tubeaudio/0.1.0"
	titlePrefix    = "tubeaudio - "
	maxErrorBody   = 2048
	defaultTimeout = 10 * time.Second
)

// Service defines the notification surface exposed to the CLI.
type Service interface {
	NotifyDownloadCompleted(ctx context.Context, title, audioPath string) error
	NotifyDownloadFailed(ctx context.Context, videoID, kind, message string) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed, skipped int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy-backed Service, or one that drops every event
// when no topic is configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	return &ntfyService{
		topicURL: topic,
		client:   &http.Client{Timeout: lo.Ternary(timeout > 0, timeout, defaultTimeout)},
		enabled: map[outcome]bool{
			outcomeSuccess: cfg.Notifications.OnSuccess,
			outcomeError:   cfg.Notifications.OnError,
			outcomeAlways:  true,
		},
	}
}

// outcome gates an event against the on_success/on_error toggles.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeError
	outcomeAlways
)

type event struct {
	outcome  outcome
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	topicURL string
	client   *http.Client
	enabled  map[outcome]bool
}

func (n *ntfyService) NotifyDownloadCompleted(ctx context.Context, title, audioPath string) error {
	lines := []string{"🎵 Downloaded: " + textutil.OrDefault(strings.TrimSpace(title), "untitled")}
	if p := strings.TrimSpace(audioPath); p != "" {
		lines = append(lines, "File: "+p)
	}
	return n.publish(ctx, event{
		outcome: outcomeSuccess,
		title:   "Download Complete",
		body:    strings.Join(lines, "\n"),
		tags:    []string{"download", "completed"},
	})
}

func (n *ntfyService) NotifyDownloadFailed(ctx context.Context, videoID, kind, message string) error {
	head := "❌ Download failed"
	if id := strings.TrimSpace(videoID); id != "" {
		head += " for " + id
	}
	if k := strings.TrimSpace(kind); k != "" {
		head += " (" + k + ")"
	}
	return n.publish(ctx, event{
		outcome:  outcomeError,
		title:    "Error",
		body:     head + ": " + textutil.OrDefault(strings.TrimSpace(message), "unknown"),
		tags:     []string{"error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed, skipped int, duration time.Duration) error {
	elapsed := max(duration.Round(time.Second), 0)
	ev := event{
		outcome: outcomeSuccess,
		title:   "Batch Complete",
		body:    fmt.Sprintf("%d downloaded, %d skipped in %s", succeeded, skipped, elapsed),
		tags:    []string{"batch", "completed"},
	}
	if failed > 0 {
		ev.outcome = outcomeError
		ev.title += " (with errors)"
		ev.body = fmt.Sprintf("%d downloaded, %d skipped, %d failed in %s", succeeded, skipped, failed, elapsed)
	}
	return n.publish(ctx, ev)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.publish(ctx, event{
		outcome:  outcomeAlways,
		title:    "Test",
		body:     "🧪 Notification system test",
		tags:     []string{"test"},
		priority: "low",
	})
}

// publish posts ev to the topic URL using ntfy's header conventions.
func (n *ntfyService) publish(ctx context.Context, ev event) error {
	if !n.enabled[ev.outcome] {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(ev.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", titlePrefix+ev.title)
	req.Header.Set("Tags", strings.Join(append([]string{"tubeaudio"}, ev.tags...), ","))
	if ev.priority != "" {
		req.Header.Set("Priority", ev.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDownloadCompleted(context.Context, string, string) error            { return nil }
func (noopService) NotifyDownloadFailed(context.Context, string, string, string) error       { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, int, time.Duration) error { return nil }
func (noopService) TestNotification(context.Context) error                                   { return nil }
