package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/language"
	"quill/internal/transcript"
)

// Service provides Whisper transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a Whisper service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Binary returns the whisper executable name.
func (s *Service) Binary() string {
	if s.cfg.Binary != "" {
		return s.cfg.Binary
	}
	return WhisperCommand
}

// run executes a command, using the custom runner if set.
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

// Transcribe runs Whisper against the source media file and returns the parsed
// transcript. outputDir is where Whisper writes its JSON result; it defaults to
// the source's directory.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) (transcript.Transcript, error) {
	if source == "" {
		return transcript.Transcript{}, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript.Transcript{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if s.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	args := s.buildArgs(source, outputDir)
	if err := s.run(ctx, s.Binary(), args...); err != nil {
		return transcript.Transcript{}, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return s.loadResult(jsonPath)
}

// buildArgs constructs the whisper command arguments.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := []string{
		source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--verbose", "False",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		if mapped := language.ToISO2(lang); mapped != "" {
			lang = mapped
		}
		args = append(args, "--language", lang)
	}
	return args
}

// resultSegment is one transcribed segment from Whisper JSON output.
type resultSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// resultPayload is the JSON structure Whisper writes alongside the media file.
type resultPayload struct {
	Text     string          `json:"text"`
	Language string          `json:"language"`
	Segments []resultSegment `json:"segments"`
}

func (s *Service) loadResult(path string) (transcript.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("whisper: read result: %w", err)
	}
	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return transcript.Transcript{}, fmt.Errorf("whisper: decode result: %w", err)
	}

	out := transcript.Transcript{
		Text:     strings.TrimSpace(payload.Text),
		Language: normalizeLanguage(payload.Language),
	}
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}
	if out.Text == "" && len(out.Segments) > 0 {
		parts := make([]string, 0, len(out.Segments))
		for _, seg := range out.Segments {
			parts = append(parts, seg.Text)
		}
		out.Text = strings.Join(parts, " ")
	}
	if out.Text == "" {
		return transcript.Transcript{}, fmt.Errorf("whisper: no speech detected in %s", filepath.Base(path))
	}
	if out.Language == "" {
		out.Language = normalizeLanguage(s.cfg.Language)
	}
	if out.Language == "" {
		out.Language = transcript.LanguageUnknown
	}
	out.Timed = len(out.Segments) > 0
	if len(out.Segments) == 0 {
		// Some models emit only the full text. Synthesize segments so
		// renderers always have a cue axis to walk.
		if fallback, err := transcript.ParsePlainText(out.Text); err == nil {
			out.Segments = fallback.Segments
		}
	}
	return out, nil
}

// normalizeLanguage maps Whisper's language labels (ISO codes or full names
// such as "english") to ISO 639-1. Unmapped values pass through untouched.
func normalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if mapped := language.ToISO2(raw); mapped != "" {
		return mapped
	}
	return raw
}
