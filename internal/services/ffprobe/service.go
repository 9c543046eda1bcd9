package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata reported by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Result is the parsed outcome of an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// AudioStreamCount returns the number of audio streams in the container.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when
// ffprobe did not report a usable value.
func (r Result) DurationSeconds() float64 {
	value := strings.TrimSpace(r.Format.Duration)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// Service provides media container inspection through ffprobe.
type Service struct {
	cfg          Config
	outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates an ffprobe service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithOutputRunner sets a custom output-capturing runner (for testing).
func (s *Service) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.outputRunner = runner
}

// Binary returns the ffprobe executable name.
func (s *Service) Binary() string {
	if s.cfg.Binary != "" {
		return s.cfg.Binary
	}
	return FFprobeCommand
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}

// runOutput executes a command and captures stdout, using the custom runner if set.
func (s *Service) runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.outputRunner != nil {
		return s.outputRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return output, nil
}

// Inspect runs ffprobe against the media file and parses its JSON report.
func (s *Service) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, fmt.Errorf("inspect: path required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	output, err := s.runOutput(ctx, s.Binary(),
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe: %w", err)
	}
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe: decode report: %w", err)
	}
	return result, nil
}
