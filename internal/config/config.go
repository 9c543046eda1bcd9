package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, database, and API bind configuration.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	DBPath     string `toml:"db_path"`
	APIBind    string `toml:"api_bind"`
}

// Whisper contains configuration for speech recognition.
type Whisper struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ytdlp contains configuration for remote video acquisition.
type Ytdlp struct {
	Binary         string `toml:"binary"`
	PreferCaptions bool   `toml:"prefer_captions"`
	AudioFormat    string `toml:"audio_format"`
	AudioQuality   string `toml:"audio_quality"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains configuration for artifact rendering.
type Render struct {
	BrandPrimary          string `toml:"brand_primary"`
	BrandAccent           string `toml:"brand_accent"`
	SentencesPerParagraph int    `toml:"sentences_per_paragraph"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Queued         bool   `toml:"queued"`
	Completed      bool   `toml:"completed"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Quill.
//
// Configuration sections by subsystem:
//   - Paths: directories, queue database, and API bind address
//   - Whisper: speech recognition model and binary
//   - Ytdlp: caption fetching and audio extraction
//   - Render: brand colors and paragraph grouping for HTML output
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and heartbeats
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Whisper       Whisper       `toml:"whisper"`
	Ytdlp         Ytdlp         `toml:"ytdlp"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/quill/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/quill/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("quill.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.OutputDir,
		c.Paths.StagingDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.DBPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WhisperBinary returns the whisper executable name.
func (c *Config) WhisperBinary() string {
	if v := strings.TrimSpace(c.Whisper.Binary); v != "" {
		return v
	}
	return "whisper"
}

// YtdlpBinary returns the yt-dlp executable name.
func (c *Config) YtdlpBinary() string {
	if v := strings.TrimSpace(c.Ytdlp.Binary); v != "" {
		return v
	}
	return "yt-dlp"
}

// FFmpegBinary returns the ffmpeg executable name yt-dlp relies on for audio
// extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used to inspect local
// media files.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
