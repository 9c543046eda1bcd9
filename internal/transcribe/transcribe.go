package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"log/slog"

	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/services/whisper"
	"quill/internal/services/ytdlp"
	"quill/internal/stage"
	"quill/internal/transcript"
)

// Transcriber runs speech recognition over a staged media file.
type Transcriber interface {
	Transcribe(ctx context.Context, source, outputDir string) (transcript.Transcript, error)
}

// Stage obtains a transcript for fetched queue items.
type Stage struct {
	store       *queue.Store
	cfg         *config.Config
	logger      *slog.Logger
	transcriber Transcriber
}

// NewStage constructs the transcribe handler using default dependencies.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	svc := whisper.NewService(whisper.Config{
		Binary:         cfg.WhisperBinary(),
		Model:          cfg.Whisper.Model,
		Language:       cfg.Whisper.Language,
		TimeoutSeconds: cfg.Whisper.TimeoutSeconds,
	})
	return NewStageWithTranscriber(cfg, store, logger, svc)
}

// NewStageWithTranscriber allows injecting the recognizer (used in tests).
func NewStageWithTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger, transcriber Transcriber) *Stage {
	return &Stage{
		store:       store,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "transcribe"),
		transcriber: transcriber,
	}
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Transcribing"
	}
	item.ProgressMessage = "Selecting transcript source"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting transcription",
		logging.String("source_kind", string(item.SourceKind)),
		logging.String("caption_path", strings.TrimSpace(item.CaptionPath)),
		logging.String("media_path", strings.TrimSpace(item.MediaPath)),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	var (
		tr  transcript.Transcript
		err error
	)
	switch {
	case item.SourceKind == queue.SourceTranscript:
		s.updateProgress(ctx, item, "Parsing transcript text", 30)
		tr, err = s.parseSourceText(item)
	case strings.TrimSpace(item.CaptionPath) != "":
		s.updateProgress(ctx, item, "Parsing captions", 30)
		tr, err = s.parseCaptions(item)
	case strings.TrimSpace(item.MediaPath) != "":
		s.updateProgress(ctx, item, "Running speech recognition", 10)
		tr, err = s.recognize(ctx, item)
	default:
		err = services.Wrap(services.ErrValidation, "transcribe", "select input", "No staged input available for transcription; rerun the fetch stage", nil)
	}
	if err != nil {
		return err
	}

	payload, err := transcript.ToJSON(tr)
	if err != nil {
		return services.Wrap(services.ErrTransient, "transcribe", "encode transcript", "Failed to encode transcript payload", err)
	}
	item.TranscriptJSON = payload
	item.Language = tr.Language
	item.SetProgressComplete("Transcribed", fmt.Sprintf("Transcript ready (%d segments)", len(tr.Segments)))
	logger.Info(
		"transcription completed",
		logging.Int("segments", len(tr.Segments)),
		logging.String("language", tr.Language),
		logging.Bool("timed", tr.HasTimestamps()),
	)
	return nil
}

// parseSourceText handles conversion jobs carrying inline transcript text.
func (s *Stage) parseSourceText(item *queue.Item) (transcript.Transcript, error) {
	format := transcript.FormatPlainText
	if declared := strings.TrimSpace(item.DeclaredFormat); declared != "" {
		parsed, err := transcript.ParseFormat(declared)
		if err != nil {
			return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "resolve format", err.Error(), nil)
		}
		format = parsed
	}
	tr, err := transcript.Parse(format, item.SourceText)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "parse transcript", "Transcript source text is empty or unparsable", err)
	}
	return tr, nil
}

func (s *Stage) parseCaptions(item *queue.Item) (transcript.Transcript, error) {
	data, err := os.ReadFile(item.CaptionPath)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "read captions", "Caption file missing from staging; rerun the fetch stage", err)
	}
	tr, err := transcript.ParseVTT(string(data))
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "parse captions", "Caption file is empty or unparsable", err)
	}
	if tr.Language == transcript.LanguageUnknown {
		// Caption tracks are requested in English only.
		tr.Language = ytdlp.CaptionLangs
	}
	return tr, nil
}

func (s *Stage) recognize(ctx context.Context, item *queue.Item) (transcript.Transcript, error) {
	if s.transcriber == nil {
		return transcript.Transcript{}, services.Wrap(services.ErrConfiguration, "transcribe", "resolve recognizer", "Speech recognizer unavailable", nil)
	}
	outputDir := item.StagingDir(s.cfg.Paths.StagingDir)
	tr, err := s.transcriber.Transcribe(ctx, item.MediaPath, outputDir)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "speech recognition", "Whisper transcription failed; check the whisper installation and media file", err)
	}
	return tr, nil
}

// HealthCheck verifies speech recognition prerequisites.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.transcriber == nil {
		return stage.Unhealthy(name, "speech recognizer unavailable")
	}
	binary := s.cfg.WhisperBinary()
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("whisper binary %q not found", binary))
	}
	return stage.Healthy(name)
}

func (s *Stage) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := s.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist transcribe progress", logging.Error(err))
		return
	}
	*item = copy
}
