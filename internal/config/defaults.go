package config

const (
	defaultOutputDir             = "~/transcripts"
	defaultStagingDir            = "~/.local/share/quill/staging"
	defaultLogDir                = "~/.local/share/quill/logs"
	defaultDBPath                = "~/.local/share/quill/queue.db"
	defaultAPIBind               = "127.0.0.1:7845"
	defaultWhisperModel          = "base"
	defaultWhisperTimeout        = 3600
	defaultYtdlpAudioFormat      = "mp3"
	defaultYtdlpAudioQuality     = "192K"
	defaultYtdlpTimeout          = 1800
	defaultBrandPrimary          = "#8C1D40"
	defaultBrandAccent           = "#FFC627"
	defaultSentencesPerParagraph = 4
	defaultNotifyRequestTimeout  = 10
	defaultQueuePollInterval     = 5
	defaultErrorRetryInterval    = 10
	defaultHeartbeatInterval     = 15
	defaultHeartbeatTimeout      = 120
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			DBPath:     defaultDBPath,
			APIBind:    defaultAPIBind,
		},
		Whisper: Whisper{
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Ytdlp: Ytdlp{
			PreferCaptions: true,
			AudioFormat:    defaultYtdlpAudioFormat,
			AudioQuality:   defaultYtdlpAudioQuality,
			TimeoutSeconds: defaultYtdlpTimeout,
		},
		Render: Render{
			BrandPrimary:          defaultBrandPrimary,
			BrandAccent:           defaultBrandAccent,
			SentencesPerParagraph: defaultSentencesPerParagraph,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Queued:         true,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
