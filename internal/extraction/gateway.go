package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"tubeaudio/internal/config"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/planner"
	"tubeaudio/internal/services"
	"tubeaudio/internal/services/ytdlp"
)

const (
	stageProbe           = "probe"
	stageDownload        = "download"
	missingOutputMessage = "download finished, but the final audio file could not be found"
	progressBucket       = 10.0
)

// Engine is the extraction engine the gateway drives. *ytdlp.Client
// satisfies it.
type Engine interface {
	Extract(ctx context.Context, url string) (*ytdlp.Info, error)
	Download(ctx context.Context, url string, info *ytdlp.Info, opts ytdlp.Options, progress func(ytdlp.Progress)) (string, error)
}

// Settings are the config sections the gateway turns into engine options.
type Settings struct {
	Audio     config.Audio
	Subtitles config.Subtitles
	Extractor config.Extractor
}

// SettingsFromConfig copies the gateway's sections out of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{Audio: cfg.Audio, Subtitles: cfg.Subtitles, Extractor: cfg.Extractor}
}

// Download is a completed extraction.
type Download struct {
	AudioPath string
	Metadata  *Metadata
}

// Gateway adapts the extraction engine to the fetch pipeline.
type Gateway struct {
	engine   Engine
	fs       afero.Fs
	settings Settings
	logger   *slog.Logger
}

// New constructs a gateway. A nil fs uses the OS filesystem.
func New(engine Engine, settings Settings, fs afero.Fs, logger *slog.Logger) *Gateway {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Gateway{
		engine:   engine,
		fs:       fs,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "extraction"),
	}
}

// Lookup resolves url to metadata without writing anything.
func (g *Gateway) Lookup(ctx context.Context, url string) (*Metadata, error) {
	info, err := g.engine.Extract(ctx, url)
	if err != nil {
		return nil, services.Wrap(Classify(err), stageProbe, "extract", "resolve resource metadata", err)
	}
	return MetadataFromInfo(info), nil
}

// Probe is Lookup for callers that can proceed without metadata: it returns
// nil when the engine cannot resolve url.
func (g *Gateway) Probe(ctx context.Context, url string) *Metadata {
	ctx = services.WithStage(ctx, stageProbe)
	meta, err := g.Lookup(ctx, url)
	if err != nil {
		logging.WithContext(ctx, g.logger).Debug("metadata probe failed",
			logging.Error(err),
			logging.ErrorKind(err),
		)
		return nil
	}
	return meta
}

// Download resolves url, enforces the quality floor (kbps, 0 disables), and
// extracts audio to plan. The returned error always carries a kind.
func (g *Gateway) Download(ctx context.Context, url string, plan planner.Plan, qualityFloor int) (*Download, error) {
	ctx = services.WithStage(ctx, stageDownload)
	logger := logging.WithContext(ctx, g.logger)

	info, err := g.engine.Extract(ctx, url)
	if err != nil {
		return nil, wrapEngineError("extract", "resolve resource metadata", err)
	}
	meta := MetadataFromInfo(info)

	// An absent abr estimate passes the floor: the engine could not price
	// the stream, which is not evidence that it is below the minimum.
	if qualityFloor > 0 {
		if abr, ok := meta.AudioBitrate.Get(); ok && abr < float64(qualityFloor) {
			logger.Info("quality floor not met",
				logging.Args(logging.DecisionAttrs("quality_floor", "reject",
					fmt.Sprintf("estimated %.0f kbps < %d kbps", abr, qualityFloor))...)...,
			)
			return nil, services.Wrap(services.KindQualityBelowThreshold, stageDownload, "quality",
				fmt.Sprintf("audio bitrate estimate %.0f kbps is below the minimum %d kbps", abr, qualityFloor), nil)
		}
	}

	sampler := logging.NewProgressSampler(progressBucket)
	path, err := g.engine.Download(ctx, url, info, g.options(plan), func(p ytdlp.Progress) {
		if !sampler.ShouldLog(p.Percent, p.Phase) {
			return
		}
		attrs := []logging.Attr{
			logging.String("phase", p.Phase),
			logging.String(logging.FieldProgressMessage, p.Message),
		}
		if p.Percent >= 0 {
			attrs = append(attrs, logging.Float64(logging.FieldProgressPercent, p.Percent))
		}
		logger.Info("download progress", logging.Args(attrs...)...)
	})
	if err != nil {
		var engineErr *ytdlp.EngineError
		if errors.As(err, &engineErr) && engineErr.Code == ytdlp.CodeNoOutput {
			return nil, services.Wrap(services.KindExtractionFailed, stageDownload, "verify", missingOutputMessage, err)
		}
		return nil, wrapEngineError("process", "download and convert audio", err)
	}

	if ok, statErr := afero.Exists(g.fs, path); statErr != nil || !ok {
		return nil, services.Wrap(services.KindExtractionFailed, stageDownload, "verify", missingOutputMessage, statErr)
	}

	logger.Info("audio extracted",
		logging.String("audio_path", path),
		logging.Int("transfers", sampler.Transfers()),
		logging.String(logging.FieldEventType, "download_complete"),
	)
	return &Download{AudioPath: path, Metadata: meta}, nil
}

func (g *Gateway) options(plan planner.Plan) ytdlp.Options {
	s := g.settings
	return ytdlp.Options{
		AudioFormat:       s.Audio.Format,
		AudioQuality:      s.Audio.Quality,
		SampleRate:        s.Audio.SampleRate,
		Mono:              s.Audio.ForceMono,
		Subtitles:         s.Subtitles.Enabled,
		SubtitleLanguages: s.Subtitles.Languages,
		AutoSubtitles:     s.Subtitles.AutoGenerated,
		BasePath:          plan.Base,
		Overwrite:         s.Audio.OverwriteExisting,
		WriteInfoJSON:     s.Extractor.WriteInfoJSON,
		EmbedChapters:     s.Extractor.EmbedChapters,
		SectionStart:      s.Extractor.TimeRange.Start,
		SectionEnd:        s.Extractor.TimeRange.End,
	}
}

func wrapEngineError(operation, message string, err error) error {
	return services.Wrap(Classify(err), stageDownload, operation, message, err)
}
