package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tubeaudio/internal/fetch"
	"tubeaudio/internal/history"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/notifications"
	"tubeaudio/internal/resolver"
	"tubeaudio/internal/runlock"
	"tubeaudio/internal/services"
)

// errRunFailed marks a fetch invocation where at least one URL ended in
// error. The results are already printed, so main only sets the exit code.
var errRunFailed = errors.New("one or more downloads failed")

const lockedReason = "another tubeaudio process is already downloading this video"

// batch runs the fetch pipeline over several URLs with bounded concurrency.
// Every run is stamped with its own correlation id, holds the per-video
// lock for its duration, and is recorded and announced when it finishes.
type batch struct {
	fetcher   *fetch.Fetcher
	locker    *runlock.Locker
	store     *history.Store
	resultLog *history.ResultLog
	notifier  notifications.Service
	logger    *slog.Logger
	jobs      int
	now       func() time.Time
}

// dedupe drops URLs that resolve to an ID already seen earlier in urls.
// Unresolvable URLs are kept so the pipeline reports them.
func dedupe(urls []string) ([]string, []string) {
	seen := make(map[resolver.ResourceID]struct{}, len(urls))
	kept := make([]string, 0, len(urls))
	var dropped []string
	for _, raw := range urls {
		id, err := resolver.ExtractID(raw)
		if err != nil {
			kept = append(kept, raw)
			continue
		}
		if _, ok := seen[id]; ok {
			dropped = append(dropped, raw)
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, raw)
	}
	return kept, dropped
}

// run fetches urls and returns one Result per unique URL in input order.
func (b *batch) run(ctx context.Context, urls []string) []fetch.Result {
	unique, dropped := dedupe(urls)
	for _, raw := range dropped {
		attrs := append(logging.DecisionAttrs("duplicate_url", "skip", "same video ID as an earlier argument"), logging.String("video_url", raw))
		b.logger.Info("duplicate video in arguments, fetching once", logging.Args(attrs...)...)
	}

	jobs := b.jobs
	if jobs <= 0 {
		jobs = 1
	}
	if jobs > len(unique) {
		jobs = len(unique)
	}

	started := b.now()
	results := make([]fetch.Result, len(unique))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = b.runOne(ctx, unique[i])
			}
		}()
	}
	for i := range unique {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if len(results) > 1 {
		b.notifyBatch(ctx, results, b.now().Sub(started))
	}
	return results
}

func (b *batch) runOne(ctx context.Context, raw string) fetch.Result {
	ctx = services.WithRequestID(ctx, uuid.NewString())

	if id, err := resolver.ExtractID(raw); err == nil && b.locker != nil {
		lock, err := b.locker.Acquire(id.String())
		switch {
		case errors.Is(err, runlock.ErrHeld):
			result := b.lockedResult(ctx, id, raw)
			b.record(ctx, result)
			return result
		case err != nil:
			logging.WarnWithContext(logging.WithContext(services.WithVideoID(ctx, id.String()), b.logger),
				"run lock unavailable, continuing unlocked", "run_lock_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "concurrent invocations for this video are not prevented"),
			)
		default:
			defer func() {
				if err := lock.Release(); err != nil {
					b.logger.DebugContext(ctx, "release run lock", logging.Error(err))
				}
			}()
		}
	}

	result := b.fetcher.Run(ctx, raw)
	b.record(ctx, result)
	b.notify(ctx, result)
	return result
}

func (b *batch) lockedResult(ctx context.Context, id resolver.ResourceID, raw string) fetch.Result {
	now := b.now()
	result := fetch.Result{
		Status:       fetch.StatusSkipped,
		VideoID:      id.String(),
		VideoURL:     resolver.CanonicalURL(id),
		ErrorMessage: lockedReason,
		StartedAt:    now,
		Outcome:      fetch.Skipped{Reason: lockedReason},
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		result.CorrelationID = rid
	}
	attrs := append(logging.DecisionAttrs("run_lock", "skip", lockedReason), logging.String("video_url", raw))
	logging.WithContext(services.WithVideoID(ctx, id.String()), b.logger).Info("download skipped", logging.Args(attrs...)...)
	return result
}

func (b *batch) record(ctx context.Context, result fetch.Result) {
	logger := logging.WithContext(ctx, b.logger)
	if b.store != nil {
		if _, err := b.store.Record(ctx, result); err != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from tubeaudio history"),
			)
		}
	}
	if err := b.resultLog.Append(result); err != nil {
		logging.WarnWithContext(logger, "failed to append result log", "result_log_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.success_log and history.error_log paths"),
		)
	}
}

func (b *batch) notify(ctx context.Context, result fetch.Result) {
	var err error
	switch result.Status {
	case fetch.StatusSuccess:
		err = b.notifier.NotifyDownloadCompleted(ctx, displayTitle(result), result.AudioFilePath)
	case fetch.StatusError:
		err = b.notifier.NotifyDownloadFailed(ctx, result.VideoID, string(result.ErrorKind), result.ErrorMessage)
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run tubeaudio test-notify to check the ntfy topic"),
		)
	}
}

func (b *batch) notifyBatch(ctx context.Context, results []fetch.Result, elapsed time.Duration) {
	var succeeded, failed, skipped int
	for _, r := range results {
		switch r.Status {
		case fetch.StatusSuccess:
			succeeded++
		case fetch.StatusError:
			failed++
		default:
			skipped++
		}
	}
	if err := b.notifier.NotifyBatchCompleted(ctx, succeeded, failed, skipped, elapsed); err != nil {
		b.logger.WarnContext(ctx, "batch notification failed", logging.Error(err))
	}
}
