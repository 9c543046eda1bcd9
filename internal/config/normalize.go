package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeYtdlp()
	c.normalizeRender()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeout
	}
}

func (c *Config) normalizeYtdlp() {
	c.Ytdlp.Binary = strings.TrimSpace(c.Ytdlp.Binary)
	c.Ytdlp.AudioFormat = strings.ToLower(strings.TrimSpace(c.Ytdlp.AudioFormat))
	if c.Ytdlp.AudioFormat == "" {
		c.Ytdlp.AudioFormat = defaultYtdlpAudioFormat
	}
	c.Ytdlp.AudioQuality = strings.TrimSpace(c.Ytdlp.AudioQuality)
	if c.Ytdlp.AudioQuality == "" {
		c.Ytdlp.AudioQuality = defaultYtdlpAudioQuality
	}
	if c.Ytdlp.TimeoutSeconds <= 0 {
		c.Ytdlp.TimeoutSeconds = defaultYtdlpTimeout
	}
}

func (c *Config) normalizeRender() {
	c.Render.BrandPrimary = strings.TrimSpace(c.Render.BrandPrimary)
	if c.Render.BrandPrimary == "" {
		c.Render.BrandPrimary = defaultBrandPrimary
	}
	c.Render.BrandAccent = strings.TrimSpace(c.Render.BrandAccent)
	if c.Render.BrandAccent == "" {
		c.Render.BrandAccent = defaultBrandAccent
	}
	if c.Render.SentencesPerParagraph <= 0 {
		c.Render.SentencesPerParagraph = defaultSentencesPerParagraph
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("QUILL_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
