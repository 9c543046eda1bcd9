package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/stage"
	"quill/internal/testsupport"
	"quill/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Ingest: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr, "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("unexpected pid: %d", status.PID)
	}
	if status.QueueDBPath != cfg.Paths.DBPath {
		t.Fatalf("unexpected queue db path: %q", status.QueueDBPath)
	}
	if !strings.HasSuffix(status.LockFilePath, "quilld.lock") {
		t.Fatalf("unexpected lock path: %q", status.LockFilePath)
	}
	if !status.Workflow.Running {
		t.Fatal("expected workflow to report running")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonServesAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("expected bound api address after start")
	}

	client, err := api.NewClient(addr)
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}
	if err := client.Health(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("expected empty stats for fresh queue, got %+v", stats)
	}

	remote, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !remote.Running || remote.PID != os.Getpid() {
		t.Fatalf("unexpected remote status: %+v", remote)
	}
}

func TestDaemonSecondInstanceBlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	t.Cleanup(func() {
		first.Close()
	})
	second := newDaemon(t, cfg)
	t.Cleanup(func() {
		second.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be blocked by the lock")
	}

	first.Stop()

	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release failed: %v", err)
	}
	second.Stop()
}

func TestDaemonAddFileValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	t.Cleanup(func() {
		d.Close()
	})
	ctx := context.Background()

	badPath := filepath.Join(t.TempDir(), "slides.pdf")
	if err := os.WriteFile(badPath, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := d.AddFile(ctx, badPath, ""); err == nil {
		t.Fatal("expected unsupported extension to be rejected")
	}

	goodPath := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(goodPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	item, err := d.AddFile(ctx, goodPath, "Conference Talk")
	if err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if item.SourceKind != queue.SourceFile || item.Status != queue.StatusPending {
		t.Fatalf("unexpected item: kind=%q status=%q", item.SourceKind, item.Status)
	}
	if item.Title != "Conference Talk" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
}

func TestDaemonAddURLValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	t.Cleanup(func() {
		d.Close()
	})
	ctx := context.Background()

	if _, err := d.AddURL(ctx, "ftp://example.com/video"); err == nil {
		t.Fatal("expected non-video url to be rejected")
	}

	item, err := d.AddURL(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("AddURL failed: %v", err)
	}
	if item.SourceKind != queue.SourceURL || item.Status != queue.StatusPending {
		t.Fatalf("unexpected item: kind=%q status=%q", item.SourceKind, item.Status)
	}
}

func TestDaemonAddTranscriptEntersFetched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	t.Cleanup(func() {
		d.Close()
	})
	ctx := context.Background()

	if _, err := d.AddTranscript(ctx, "Empty", "", "", ""); err == nil {
		t.Fatal("expected transcript without text or file to be rejected")
	}

	item, err := d.AddTranscript(ctx, "Meeting Notes", "", "hello world", "")
	if err != nil {
		t.Fatalf("AddTranscript failed: %v", err)
	}
	if item.SourceKind != queue.SourceTranscript {
		t.Fatalf("unexpected source kind: %q", item.SourceKind)
	}
	if item.Status != queue.StatusFetched {
		t.Fatalf("expected transcript job to skip ingest, got %q", item.Status)
	}

	srtPath := filepath.Join(t.TempDir(), "talk.srt")
	srt := "1\n00:00:00,000 --> 00:00:02,000\nHello there\n"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	fromFile, err := d.AddTranscript(ctx, "", srtPath, "", "")
	if err != nil {
		t.Fatalf("AddTranscript from file failed: %v", err)
	}
	if fromFile.DeclaredFormat != "srt" {
		t.Fatalf("expected format derived from extension, got %q", fromFile.DeclaredFormat)
	}
}
