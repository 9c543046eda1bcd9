package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNoCaptions reports that a video has no usable caption track. It marks
// absence, not failure; callers fall back to audio download and speech
// recognition.
var ErrNoCaptions = errors.New("no captions available")

var videoURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// IsVideoURL reports whether the string looks like a YouTube video URL.
func IsVideoURL(raw string) bool {
	return videoURLPattern.MatchString(strings.TrimSpace(raw))
}

// VideoInfo carries the metadata yt-dlp reports for a video.
type VideoInfo struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Uploader        string  `json:"uploader"`
	DurationSeconds float64 `json:"duration"`
	WebpageURL      string  `json:"webpage_url"`
}

// Service provides caption and audio acquisition through yt-dlp.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
	outputRunner  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a yt-dlp service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithOutputRunner sets a custom output-capturing runner (for testing).
func (s *Service) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.outputRunner = runner
}

// Binary returns the yt-dlp executable name.
func (s *Service) Binary() string {
	if s.cfg.Binary != "" {
		return s.cfg.Binary
	}
	return YtdlpCommand
}

// PreferCaptions reports whether the captions-first fast path is enabled.
func (s *Service) PreferCaptions() bool {
	return s.cfg.PreferCaptions
}

func (s *Service) audioFormat() string {
	if s.cfg.AudioFormat != "" {
		return s.cfg.AudioFormat
	}
	return DefaultAudioFormat
}

func (s *Service) audioQuality() string {
	if s.cfg.AudioQuality != "" {
		return s.cfg.AudioQuality
	}
	return DefaultAudioQuality
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}

// run executes a command for its side effects, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
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

// Probe fetches video metadata without downloading anything.
func (s *Service) Probe(ctx context.Context, url string) (VideoInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return VideoInfo{}, fmt.Errorf("probe: url required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	output, err := s.runOutput(ctx, s.Binary(), "--dump-json", "--skip-download", "--no-playlist", url)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("yt-dlp: %w", err)
	}
	var info VideoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return VideoInfo{}, fmt.Errorf("yt-dlp: decode metadata: %w", err)
	}
	if info.ID == "" {
		return VideoInfo{}, fmt.Errorf("yt-dlp: metadata missing video id")
	}
	return info, nil
}

// FetchCaptions downloads the video's caption track as VTT into destDir.
// It returns ErrNoCaptions when the video has neither subtitles nor
// auto-generated captions in the configured language.
func (s *Service) FetchCaptions(ctx context.Context, url, destDir string) (string, VideoInfo, error) {
	info, err := s.Probe(ctx, url)
	if err != nil {
		return "", VideoInfo{}, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", VideoInfo{}, fmt.Errorf("fetch captions: ensure dest dir: %w", err)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", CaptionLangs,
		"--sub-format", CaptionFormat,
		"--no-playlist",
		"-o", filepath.Join(destDir, outputTemplate),
		url,
	}
	if err := s.run(ctx, s.Binary(), args...); err != nil {
		return "", VideoInfo{}, fmt.Errorf("yt-dlp: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, info.ID+"*."+CaptionFormat))
	if err != nil {
		return "", VideoInfo{}, fmt.Errorf("fetch captions: scan dest dir: %w", err)
	}
	if len(matches) == 0 {
		return "", info, ErrNoCaptions
	}
	return matches[0], info, nil
}

// Download extracts the video's best audio track into destDir and returns the
// resulting media path.
func (s *Service) Download(ctx context.Context, url, destDir string) (string, VideoInfo, error) {
	info, err := s.Probe(ctx, url)
	if err != nil {
		return "", VideoInfo{}, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", VideoInfo{}, fmt.Errorf("download: ensure dest dir: %w", err)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	args := []string{
		"-f", AudioSelector,
		"-x",
		"--audio-format", s.audioFormat(),
		"--audio-quality", s.audioQuality(),
		"--no-playlist",
		"-o", filepath.Join(destDir, outputTemplate),
		url,
	}
	if err := s.run(ctx, s.Binary(), args...); err != nil {
		return "", VideoInfo{}, fmt.Errorf("yt-dlp: %w", err)
	}

	mediaPath := filepath.Join(destDir, info.ID+"."+s.audioFormat())
	if _, err := os.Stat(mediaPath); err != nil {
		return "", VideoInfo{}, fmt.Errorf("yt-dlp: expected audio file missing: %w", err)
	}
	return mediaPath, info, nil
}
