package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"quill/internal/config"
	"quill/internal/fileutil"
	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/services/ffprobe"
	"quill/internal/services/ytdlp"
	"quill/internal/stage"
)

// Fetcher acquires captions or audio for remote videos.
type Fetcher interface {
	FetchCaptions(ctx context.Context, url, destDir string) (string, ytdlp.VideoInfo, error)
	Download(ctx context.Context, url, destDir string) (string, ytdlp.VideoInfo, error)
}

// Prober reads container metadata from staged media files.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Stage resolves queue item sources into staged local files.
type Stage struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	fetcher Fetcher
	prober  Prober
}

// NewStage constructs the ingest handler using default dependencies.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	fetcher := ytdlp.NewService(ytdlp.Config{
		Binary:         cfg.YtdlpBinary(),
		PreferCaptions: cfg.Ytdlp.PreferCaptions,
		AudioFormat:    cfg.Ytdlp.AudioFormat,
		AudioQuality:   cfg.Ytdlp.AudioQuality,
		TimeoutSeconds: cfg.Ytdlp.TimeoutSeconds,
	})
	s := NewStageWithFetcher(cfg, store, logger, fetcher)
	s.prober = ffprobe.NewService(ffprobe.Config{Binary: cfg.FFprobeBinary()})
	return s
}

// NewStageWithFetcher allows injecting the video fetcher (used in tests).
// The constructed stage has no prober; media probing is skipped.
func NewStageWithFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger, fetcher Fetcher) *Stage {
	return &Stage{
		store:   store,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "ingest"),
		fetcher: fetcher,
	}
}

// WithProber sets the media prober (used in tests).
func (s *Stage) WithProber(prober Prober) {
	s.prober = prober
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Fetching"
	}
	item.ProgressMessage = "Resolving source"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting source resolution",
		logging.String("source_kind", string(item.SourceKind)),
		logging.String("source", item.SourceLabel()),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	switch item.SourceKind {
	case queue.SourceFile:
		return s.executeFile(ctx, logger, item)
	case queue.SourceURL:
		return s.executeURL(ctx, logger, item)
	case queue.SourceTranscript:
		// Conversion jobs enter the queue at fetched; one lands here only
		// after an operator retry reset it to pending.
		if strings.TrimSpace(item.SourceText) == "" {
			return services.Wrap(services.ErrValidation, "ingest", "validate transcript", "Transcript source text is empty", nil)
		}
		item.SetProgressComplete("Fetched", "Transcript text ready")
		return nil
	default:
		return services.Wrap(services.ErrValidation, "ingest", "resolve source", fmt.Sprintf("Unknown source kind %q", item.SourceKind), nil)
	}
}

func (s *Stage) executeFile(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "ingest", "validate source", "Media file path is empty", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return services.Wrap(services.ErrValidation, "ingest", "stat source", fmt.Sprintf("Media file %s is not readable", source), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "ingest", "stat source", fmt.Sprintf("%s is a directory, not a media file", source), nil)
	}
	if !AllowedMediaFile(source) {
		return services.Wrap(
			services.ErrValidation,
			"ingest",
			"check extension",
			fmt.Sprintf("Unsupported media extension %q; supported: %s", filepath.Ext(source), strings.Join(MediaExtensions(), ", ")),
			nil,
		)
	}

	destDir := item.StagingDir(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "ingest", "ensure staging dir", "Failed to create staging directory; set staging_dir to a writable location", err)
	}
	s.updateProgress(ctx, item, "Copying media into staging", 30)
	dest := filepath.Join(destDir, filepath.Base(source))
	if err := fileutil.CopyFileVerified(source, dest); err != nil {
		return services.Wrap(services.ErrTransient, "ingest", "stage media", "Failed to copy media into staging", err)
	}

	s.updateProgress(ctx, item, "Inspecting media", 70)
	if err := s.probeMedia(ctx, logger, item, dest); err != nil {
		return err
	}

	item.MediaPath = dest
	item.SetProgressComplete("Fetched", "Media staged for recognition")
	logger.Info(
		"media file staged",
		logging.String("media_path", dest),
		logging.Int64("bytes", info.Size()),
	)
	return nil
}

// probeMedia records container duration for queue listings and rejects files
// with no audio track. ffprobe is optional; when inspection is unavailable the
// item proceeds and speech recognition surfaces any real problem instead.
func (s *Stage) probeMedia(ctx context.Context, logger *slog.Logger, item *queue.Item, path string) error {
	if s.prober == nil {
		return nil
	}
	result, err := s.prober.Inspect(ctx, path)
	if err != nil {
		logger.Debug("media probe skipped", logging.Error(err))
		return nil
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(
			services.ErrValidation,
			"ingest",
			"probe media",
			fmt.Sprintf("%s has no audio stream to transcribe", filepath.Base(path)),
			nil,
		)
	}
	if seconds := result.DurationSeconds(); seconds > 0 {
		item.ProvenanceJSON = queue.Provenance{DurationSeconds: seconds}.ToJSON()
		logger.Debug("media duration recorded", logging.Float64("duration_seconds", seconds))
	}
	return nil
}

func (s *Stage) executeURL(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	url := strings.TrimSpace(item.SourceURL)
	if url == "" {
		return services.Wrap(services.ErrValidation, "ingest", "validate source", "Video URL is empty", nil)
	}
	if !ytdlp.IsVideoURL(url) {
		return services.Wrap(services.ErrValidation, "ingest", "validate source", fmt.Sprintf("%s is not a recognized YouTube URL", url), nil)
	}
	if s.fetcher == nil {
		return services.Wrap(services.ErrConfiguration, "ingest", "resolve fetcher", "Video fetcher unavailable", nil)
	}
	destDir := item.StagingDir(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "ingest", "ensure staging dir", "Failed to create staging directory; set staging_dir to a writable location", err)
	}

	if s.cfg.Ytdlp.PreferCaptions {
		s.updateProgress(ctx, item, "Checking for captions", 20)
		captionPath, info, err := s.fetcher.FetchCaptions(ctx, url, destDir)
		switch {
		case err == nil:
			applyVideoInfo(item, url, info)
			item.CaptionPath = captionPath
			item.SetProgressComplete("Fetched", "Captions fetched")
			logger.Info(
				"captions fetched",
				logging.String("caption_path", captionPath),
				logging.String("video_title", strings.TrimSpace(info.Title)),
			)
			return nil
		case errors.Is(err, ytdlp.ErrNoCaptions):
			logger.Info(
				"no captions available, downloading audio instead",
				logging.String("video_id", info.ID),
			)
		default:
			return services.Wrap(services.ErrExternalTool, "ingest", "fetch captions", "yt-dlp caption fetch failed; check the URL and yt-dlp installation", err)
		}
	}

	s.updateProgress(ctx, item, "Downloading audio", 40)
	mediaPath, info, err := s.fetcher.Download(ctx, url, destDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ingest", "download audio", "yt-dlp audio download failed; check the URL and yt-dlp installation", err)
	}

	applyVideoInfo(item, url, info)
	item.MediaPath = mediaPath
	item.SetProgressComplete("Fetched", "Audio downloaded")
	logger.Info(
		"audio downloaded",
		logging.String("media_path", mediaPath),
		logging.String("video_title", strings.TrimSpace(info.Title)),
	)
	return nil
}

// applyVideoInfo replaces the URL placeholder title with the real video title
// and records provenance for the rendered page.
func applyVideoInfo(item *queue.Item, url string, info ytdlp.VideoInfo) {
	if title := strings.TrimSpace(info.Title); title != "" {
		item.Title = title
	}
	link := strings.TrimSpace(info.WebpageURL)
	if link == "" {
		link = url
	}
	item.ProvenanceJSON = queue.Provenance{
		URL:             link,
		Author:          strings.TrimSpace(info.Uploader),
		DurationSeconds: info.DurationSeconds,
	}.ToJSON()
}

// HealthCheck verifies ingest prerequisites.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "ingest"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if s.fetcher == nil {
		return stage.Unhealthy(name, "video fetcher unavailable")
	}
	binary := s.cfg.YtdlpBinary()
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("yt-dlp binary %q not found", binary))
	}
	return stage.Healthy(name)
}

func (s *Stage) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := s.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist ingest progress", logging.Error(err))
		return
	}
	*item = copy
}
