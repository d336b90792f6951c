package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"tubeaudio/internal/artifacts"
	"tubeaudio/internal/config"
	"tubeaudio/internal/extraction"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/planner"
	"tubeaudio/internal/resolver"
	"tubeaudio/internal/retry"
	"tubeaudio/internal/services"
)

const (
	skipReason                = "files already exist and overwrite is disabled"
	verificationFailedMessage = "download verification failed - expected files not found"
)

// Gateway is the extraction boundary the fetcher drives.
type Gateway interface {
	Lookup(ctx context.Context, url string) (*extraction.Metadata, error)
	Probe(ctx context.Context, url string) *extraction.Metadata
	Download(ctx context.Context, url string, plan planner.Plan, qualityFloor int) (*extraction.Download, error)
}

// Fetcher runs the download pipeline for one URL at a time. It keeps no state
// between runs, so one Fetcher may serve concurrent runs for distinct IDs.
type Fetcher struct {
	gateway    Gateway
	planner    *planner.Planner
	artifacts  *artifacts.Manager
	retrier    *retry.Controller
	minQuality int
	logger     *slog.Logger
	now        func() time.Time
}

type options struct {
	fs      afero.Fs
	sleeper retry.Sleeper
	now     func() time.Time
}

// Option customizes a Fetcher.
type Option func(*options)

// WithFS replaces the filesystem used for planning and verification.
func WithFS(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithSleeper replaces the retry backoff sleeper.
func WithSleeper(s retry.Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithClock replaces the clock used for run timing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New wires a Fetcher from cfg around gateway.
func New(cfg *config.Config, gateway Gateway, logger *slog.Logger, opts ...Option) *Fetcher {
	o := options{fs: afero.NewOsFs(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	componentLogger := logging.NewComponentLogger(logger, "fetch")
	artifactOpts := artifacts.Options{
		AudioFormat: cfg.Audio.Format,
		Overwrite:   cfg.Audio.OverwriteExisting,
		Subtitles:   cfg.Subtitles.Enabled,
	}
	var retryOpts []retry.Option
	if o.sleeper != nil {
		retryOpts = append(retryOpts, retry.WithSleeper(o.sleeper))
	}
	return &Fetcher{
		gateway:    gateway,
		planner:    planner.New(o.fs, cfg.Paths, cfg.Naming),
		artifacts:  artifacts.New(o.fs, artifactOpts, logger),
		retrier:    retry.New(retry.PolicyFromConfig(cfg), logger, retryOpts...),
		minQuality: cfg.Audio.MinQuality,
		logger:     componentLogger,
		now:        o.now,
	}
}

// Validate reports whether raw names a downloadable resource.
func (f *Fetcher) Validate(raw string) bool {
	return resolver.Validate(raw)
}

// Info returns metadata for raw without downloading.
func (f *Fetcher) Info(ctx context.Context, raw string) (*extraction.Metadata, error) {
	id, canonical, err := resolver.Resolve(raw)
	if err != nil {
		return nil, err
	}
	ctx = services.WithVideoID(ctx, id.String())
	return f.gateway.Lookup(ctx, canonical)
}

// run carries what a single Run has learned so far.
type run struct {
	started  time.Time
	videoID  string
	videoURL string
	metadata *extraction.Metadata
	attempts int
}

// Run downloads raw and reports the outcome. It never returns an error:
// failures are classified into the Result.
func (f *Fetcher) Run(ctx context.Context, raw string) Result {
	state := &run{started: f.now(), videoID: UnknownVideoID, videoURL: raw}

	id, canonical, err := resolver.Resolve(raw)
	if err != nil {
		return f.finish(ctx, state, failure(err))
	}
	state.videoID, state.videoURL = id.String(), canonical
	ctx = services.WithVideoID(ctx, state.videoID)
	logger := logging.WithContext(ctx, f.logger)
	logger.Info("starting download", logging.String("video_url", canonical))

	title := ""
	if meta := f.gateway.Probe(ctx, canonical); meta != nil {
		state.metadata = meta
		title = meta.Title
	} else {
		logging.WarnWithContext(logger, "metadata probe failed, continuing without title", "probe_failed",
			logging.String(logging.FieldErrorHint, "rerun with --log-level debug for engine output"),
			logging.String(logging.FieldImpact, "file name falls back to the video ID"),
		)
	}

	plan, err := f.planner.Plan(state.videoID, title)
	if err != nil {
		return f.finish(ctx, state, failure(err))
	}

	if existing := f.artifacts.CheckExisting(plan); existing.ShouldSkip {
		return f.finish(ctx, state, Skipped{
			Reason:        skipReason,
			AudioPath:     existing.AudioPath,
			SubtitlePaths: existing.SubtitlePaths,
		})
	}

	var download *extraction.Download
	attempts, err := f.retrier.Do(ctx, func(ctx context.Context, _ int) error {
		result, err := f.gateway.Download(ctx, canonical, plan, f.minQuality)
		if err != nil {
			return err
		}
		download = result
		return nil
	})
	state.attempts = attempts

	var outcome Outcome
	if err == nil {
		if download.Metadata != nil {
			state.metadata = download.Metadata
		}
		verification := f.artifacts.Verify(plan)
		if verification.OK {
			outcome = Success{
				AudioPath:     verification.AudioPath,
				SubtitlePaths: verification.SubtitlePaths,
				Metadata:      state.metadata,
			}
		} else {
			err = services.Wrap(services.KindExtractionFailed, "verify", "", verificationFailedMessage, nil)
		}
	}
	if err != nil {
		f.cleanup(ctx, plan)
		outcome = failure(err)
	}
	return f.finish(ctx, state, outcome)
}

// cleanup removes partial artifacts and, when this run created it, the
// per-video directory. Problems are logged by the artifacts manager only.
func (f *Fetcher) cleanup(ctx context.Context, plan planner.Plan) {
	ctx = services.WithStage(ctx, "cleanup")
	removed := f.artifacts.CleanupPartial(ctx, plan)
	if plan.CreatedSubdir {
		dirs := f.artifacts.RemoveDirectoryIfEmpty(ctx, plan.Dir)
		removed.Removed = append(removed.Removed, dirs.Removed...)
	}
	if len(removed.Removed) > 0 {
		logging.WithContext(ctx, f.logger).Debug("cleaned up after failed download",
			logging.Int("removed", len(removed.Removed)),
		)
	}
}

func failure(err error) Failed {
	message := services.MessageOf(err)
	if !services.Classified(err) {
		message = fmt.Sprintf("unexpected error: %s", message)
	}
	return Failed{Kind: services.KindOf(err), Message: message, Err: err}
}

// finish is the only place a Result is built.
func (f *Fetcher) finish(ctx context.Context, state *run, outcome Outcome) Result {
	result := Result{
		Status:         outcome.Status(),
		VideoID:        state.videoID,
		VideoURL:       state.videoURL,
		Attempts:       state.attempts,
		StartedAt:      state.started,
		ElapsedSeconds: f.now().Sub(state.started).Seconds(),
		Outcome:        outcome,
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		result.CorrelationID = id
	}

	logger := logging.WithContext(ctx, f.logger)
	switch o := outcome.(type) {
	case Success:
		result.AudioFilePath = o.AudioPath
		result.SubtitleFiles = o.SubtitlePaths
		result.Metadata = o.Metadata.ToMap()
		if o.Metadata != nil {
			result.Title = o.Metadata.Title
			if d, ok := o.Metadata.Duration.Get(); ok {
				result.Duration = int(d.Seconds())
			}
		}
		logger.Info("download completed",
			logging.String("audio_path", o.AudioPath),
			logging.Int("subtitles", len(o.SubtitlePaths)),
			logging.Int("attempts", state.attempts),
			logging.String(logging.FieldEventType, "fetch_success"),
		)
	case Skipped:
		result.AudioFilePath = o.AudioPath
		result.SubtitleFiles = o.SubtitlePaths
		result.ErrorMessage = o.Reason
		if state.metadata != nil {
			result.Title = state.metadata.Title
		}
		attrs := append(logging.DecisionAttrs("existing_artifacts", "skip", o.Reason), logging.String("audio_path", o.AudioPath))
		logger.Info("download skipped", logging.Args(attrs...)...)
	case Failed:
		result.ErrorMessage = o.Message
		result.ErrorKind = o.Kind
		logging.ErrorWithContext(logger, "download failed", "fetch_failed",
			logging.String(logging.FieldErrorKind, string(o.Kind)),
			logging.String("error_message", o.Message),
			logging.Int("attempts", state.attempts),
			logging.String(logging.FieldErrorHint, hintFor(o.Kind)),
		)
	}
	return result
}

func hintFor(kind services.Kind) string {
	switch kind {
	case services.KindInvalidInput:
		return "pass a youtube.com or youtu.be URL with an 11 character video ID"
	case services.KindResourceUnavailable:
		return "the video is private or removed"
	case services.KindQualityBelowThreshold:
		return "lower audio.min_quality to accept this source"
	case services.KindNetwork:
		return "check connectivity and rerun"
	case services.KindFilesystem:
		return "check paths.output_dir permissions and free space"
	case services.KindExtractionFailed:
		return "run tubeaudio doctor and update yt-dlp"
	default:
		return "rerun with --log-level debug"
	}
}
