package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"quill/internal/config"
	"quill/internal/deps"
	"quill/internal/ingest"
	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/queue"
	"quill/internal/services/ytdlp"
	"quill/internal/transcript"
	"quill/internal/workflow"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	notifier notifications.Service
	logPath  string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
	LogPath      string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies. logPath names the
// live daemon log file served by the logs endpoint; blank falls back to the
// stable pointer under the log directory.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, logPath string) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = filepath.Join(cfg.Paths.LogDir, "quilld.log")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "quilld.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		notifier: notifications.NewService(cfg),
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, launches the workflow manager, and begins
// serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quill daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("quill daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("quill daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API listen address, or empty before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		QueueDBPath:  d.cfg.Paths.DBPath,
		LockFilePath: d.lockPath,
		LogPath:      d.logPath,
		Dependencies: deps.Check(d.cfg),
	}
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// AddFile enqueues a local media file for the full pipeline.
func (d *Daemon) AddFile(ctx context.Context, sourcePath, title string) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return nil, errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	if !ingest.AllowedMediaFile(absPath) {
		return nil, fmt.Errorf("unsupported media extension %q; supported: %s",
			filepath.Ext(absPath), strings.Join(ingest.MediaExtensions(), ", "))
	}
	item, err := d.store.NewFileJob(ctx, absPath, title)
	if err != nil {
		return nil, fmt.Errorf("enqueue media file: %w", err)
	}
	d.logger.Info("media file queued",
		logging.Int64(logging.FieldJobID, item.ID),
		logging.String(logging.FieldSource, absPath),
	)
	d.notifyQueued(ctx, item)
	return item, nil
}

// AddURL enqueues a video URL for caption fetch or download plus recognition.
func (d *Daemon) AddURL(ctx context.Context, url string) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, errors.New("source url is required")
	}
	if !ytdlp.IsVideoURL(trimmed) {
		return nil, fmt.Errorf("unsupported video URL %q", trimmed)
	}
	item, err := d.store.NewURLJob(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("enqueue url job: %w", err)
	}
	d.logger.Info("video url queued",
		logging.Int64(logging.FieldJobID, item.ID),
		logging.String(logging.FieldSource, trimmed),
	)
	d.notifyQueued(ctx, item)
	return item, nil
}

// AddTranscript enqueues existing transcript text for re-rendering. Either
// text or a readable transcript file must be provided; declaredFormat names
// the parser when the file extension alone cannot.
func (d *Daemon) AddTranscript(ctx context.Context, title, sourcePath, text, declaredFormat string) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}

	sourcePath = strings.TrimSpace(sourcePath)
	format := strings.TrimSpace(declaredFormat)
	if text == "" && sourcePath == "" {
		return nil, errors.New("transcript text or file path is required")
	}

	if sourcePath != "" {
		absPath, err := filepath.Abs(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("resolve transcript path: %w", err)
		}
		if !ingest.AllowedTranscriptFile(absPath) {
			return nil, fmt.Errorf("unsupported transcript extension %q; supported: %s",
				filepath.Ext(absPath), strings.Join(ingest.TranscriptExtensions(), ", "))
		}
		if text == "" {
			data, err := os.ReadFile(absPath)
			if err != nil {
				return nil, fmt.Errorf("read transcript file: %w", err)
			}
			text = string(data)
		}
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(absPath), ".")
		}
		sourcePath = absPath
	}
	if format == "" {
		format = string(transcript.FormatPlainText)
	}
	if _, err := transcript.ParseFormat(format); err != nil {
		return nil, err
	}

	item, err := d.store.NewTranscriptJob(ctx, title, sourcePath, text, format)
	if err != nil {
		return nil, fmt.Errorf("enqueue transcript job: %w", err)
	}
	d.logger.Info("transcript queued",
		logging.Int64(logging.FieldJobID, item.ID),
		logging.String(logging.FieldFormat, format),
	)
	d.notifyQueued(ctx, item)
	return item, nil
}

// ListQueue returns queue items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	if len(statuses) == 0 {
		return d.store.List(ctx)
	}
	return d.store.List(ctx, statuses...)
}

// RemoveItem deletes a queue item by id.
func (d *Daemon) RemoveItem(ctx context.Context, id int64) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	return d.store.Remove(ctx, id)
}

// ClearQueue removes all queue items.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue items.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue items.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// RetryFailed resets failed items (optionally a subset) back to pending.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

func (d *Daemon) notifyQueued(ctx context.Context, item *queue.Item) {
	if d.notifier == nil || item == nil {
		return
	}
	err := d.notifier.Publish(ctx, notifications.EventJobQueued, notifications.Payload{
		"title":      item.Title,
		"sourceKind": string(item.SourceKind),
	})
	if err != nil {
		d.logger.Debug("queued notification failed", logging.Error(err))
	}
}
