package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateYtdlp(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		return errors.New("paths.db_path must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if strings.TrimSpace(c.Whisper.Model) == "" {
		return errors.New("whisper.model must be set")
	}
	if c.Whisper.TimeoutSeconds <= 0 {
		return errors.New("whisper.timeout_seconds must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateYtdlp() error {
	if strings.TrimSpace(c.Ytdlp.AudioFormat) == "" {
		return errors.New("ytdlp.audio_format must be set")
	}
	if c.Ytdlp.TimeoutSeconds <= 0 {
		return errors.New("ytdlp.timeout_seconds must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateRender() error {
	if !hexColorPattern.MatchString(c.Render.BrandPrimary) {
		return fmt.Errorf("render.brand_primary must be a #RRGGBB color, got %q", c.Render.BrandPrimary)
	}
	if !hexColorPattern.MatchString(c.Render.BrandAccent) {
		return fmt.Errorf("render.brand_accent must be a #RRGGBB color, got %q", c.Render.BrandAccent)
	}
	if c.Render.SentencesPerParagraph <= 0 {
		return errors.New("render.sentences_per_paragraph must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
