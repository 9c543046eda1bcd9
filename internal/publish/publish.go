package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"quill/internal/artifacts"
	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/queue"
	"quill/internal/render"
	"quill/internal/services"
	"quill/internal/stage"
	"quill/internal/textutil"
)

// previewLimit is the number of characters of transcript text surfaced on the
// queue item for listings.
const previewLimit = 500

// Stage renders and persists the artifact set for transcribed items.
type Stage struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewStage constructs the publish handler using default dependencies.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewStageWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewStageWithNotifier allows injecting the notifier (used in tests).
func NewStageWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Stage {
	return &Stage{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "publish"),
		notifier: notifier,
	}
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Preparing renderers"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting artifact rendering",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String("language", strings.TrimSpace(item.Language)),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	tr, err := stage.LoadTranscript(item)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(item.Title)
	baseName := textutil.Identifier(title)
	if baseName == "" {
		// Titles made of pure punctuation or non-Latin script can collapse
		// to nothing; artifacts still need a stable name.
		baseName = fmt.Sprintf("Transcript%d", item.ID)
	}
	displayTitle := textutil.SafeDisplayName(title)
	if displayTitle == "" {
		displayTitle = title
	}

	prov := queue.ProvenanceFromJSON(item.ProvenanceJSON)
	meta := render.Metadata{
		Title:                 displayTitle,
		SourceURL:             prov.URL,
		Author:                prov.Author,
		Language:              strings.TrimSpace(item.Language),
		SentencesPerParagraph: s.cfg.Render.SentencesPerParagraph,
		Brand: render.Brand{
			Primary: s.cfg.Render.BrandPrimary,
			Accent:  s.cfg.Render.BrandAccent,
		},
	}

	s.updateProgress(ctx, item, "Rendering artifacts", 20)
	page, err := render.HTML(tr, meta)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "render html", "Failed to render the HTML artifact", err)
	}
	set := artifacts.Set{
		Text: render.Text(tr),
		SRT:  render.SRT(tr),
		VTT:  render.VTT(tr),
		HTML: page,
	}

	s.updateProgress(ctx, item, "Writing artifacts", 60)
	writer := artifacts.NewWriter(s.cfg.Paths.OutputDir)
	paths, err := writer.Save(baseName, set)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "write artifacts", "Failed to write artifact files; check output_dir permissions", err)
	}

	encoded, err := json.Marshal(paths)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "encode artifact paths", "Failed to encode artifact paths", err)
	}
	item.ArtifactsJSON = string(encoded)
	item.Preview = previewOf(tr.Text)
	item.SetProgressComplete("Completed", fmt.Sprintf("Artifacts ready: %s", filepath.Base(paths.HTML)))
	logger.Info(
		"artifacts published",
		logging.String("base_name", baseName),
		logging.String("html_path", paths.HTML),
		logging.Int("text_length", len(tr.Text)),
	)

	if s.notifier != nil {
		payload := notifications.Payload{"title": displayTitle, "htmlPath": paths.HTML}
		if err := s.notifier.Publish(ctx, notifications.EventJobCompleted, payload); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies publish prerequisites.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "publish"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if s.notifier == nil {
		return stage.Unhealthy(name, "notifier unavailable")
	}
	return stage.Healthy(name)
}

// previewOf truncates transcript text for queue listings: the first 500
// characters plus an ellipsis marker only when something was cut.
func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}

func (s *Stage) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := s.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist publish progress", logging.Error(err))
		return
	}
	*item = copy
}
