package config

const (
	defaultConfigPath             = "~/.config/tubeaudio/config.toml"
	defaultOutputDir              = "~/Music/tubeaudio"
	defaultLogDir                 = "~/.local/share/tubeaudio/logs"
	defaultStateDir               = "~/.local/share/tubeaudio/state"
	defaultAudioFormat            = "mp3"
	defaultMaxFilenameLength      = 100
	minMaxFilenameLength          = 16
	defaultMaxRetries             = 3
	defaultRetryDelaySeconds      = 2.0
	defaultExtractorBinary        = "yt-dlp"
	defaultProbeTimeout           = 60
	defaultDownloadTimeout        = 3600
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
	defaultNotifyRequestTimeout   = 10
	defaultWorkersParallel        = 1
	defaultSubtitleLanguage       = "en"
	outputDirEnv                  = "TUBEAUDIO_OUTPUT_DIR"
	ntfyTopicEnv                  = "TUBEAUDIO_NTFY_TOPIC"
)

// Audio codecs accepted by the extraction engine's audio postprocessor.
var supportedAudioFormats = map[string]struct{}{
	"best":   {},
	"aac":    {},
	"alac":   {},
	"flac":   {},
	"m4a":    {},
	"mp3":    {},
	"opus":   {},
	"vorbis": {},
	"wav":    {},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Audio: Audio{
			Format: defaultAudioFormat,
		},
		Subtitles: Subtitles{
			Languages: []string{defaultSubtitleLanguage},
		},
		Naming: Naming{
			PerVideoSubdir:    true,
			CleanFilenames:    true,
			MaxFilenameLength: defaultMaxFilenameLength,
		},
		Retry: Retry{
			MaxRetries:        defaultMaxRetries,
			RetryDelaySeconds: defaultRetryDelaySeconds,
		},
		Extractor: Extractor{
			Binary:          defaultExtractorBinary,
			ProbeTimeout:    defaultProbeTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			WriteInfoJSON:   true,
			EmbedChapters:   true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			OnSuccess:      true,
			OnError:        true,
		},
		Workers: Workers{
			Parallel: defaultWorkersParallel,
		},
	}
}
