// Package daemonrun boots the quill daemon process: logging, queue store,
// workflow stages, and the daemon lifecycle, then blocks until a termination
// signal arrives.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/deps"
	"quill/internal/ingest"
	"quill/internal/logging"
	"quill/internal/publish"
	"quill/internal/queue"
	"quill/internal/staging"
	"quill/internal/transcribe"
	"quill/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the quill daemon runtime loop. It returns after the daemon has
// shut down in response to context cancellation, SIGINT, or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("quilld-%s.log", runID))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update quilld.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "quilld-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "quilld.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	if swept := staging.CleanSettled(signalCtx, cfg.Paths.StagingDir, store, logger); len(swept.Removed) > 0 {
		logger.Info("staging cleanup complete", logging.Int("removed", len(swept.Removed)))
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	registerStages(workflowManager, cfg, store, logger)

	d, err := daemon.New(cfg, store, logger, workflowManager, logPath)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("quill daemon shutting down")
	return nil
}

func registerStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger) {
	if mgr == nil || cfg == nil {
		return
	}
	mgr.ConfigureStages(workflow.StageSet{
		Ingest:     ingest.NewStage(cfg, store, logger),
		Transcribe: transcribe.NewStage(cfg, store, logger),
		Publish:    publish.NewStage(cfg, store, logger),
	})
}

// ensureCurrentLogPointer keeps LogDir/quilld.log pointing at the newest run
// log. Hard links cover filesystems without symlink support.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "quilld.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := make([]logging.Attr, 0, 6)
	for _, status := range deps.Check(cfg) {
		key := snapshotKey(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

func snapshotKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}
