package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("started")

	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "quill.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestComponentPrefixInConsoleOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "workflow").Info("poll tick")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "workflow: poll tick") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if strings.Contains(string(content), "component=") {
		t.Fatalf("component should be folded into the prefix, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "context.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	ctx = services.WithItemID(ctx, 123)
	ctx = services.WithStage(ctx, "transcribing")
	ctx = services.WithRequestID(ctx, "req-xyz")

	logging.WithContext(ctx, logger).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record[logging.FieldJobID] != float64(123) {
		t.Fatalf("unexpected job id field: %v", record[logging.FieldJobID])
	}
	if record[logging.FieldStage] != "transcribing" {
		t.Fatalf("unexpected stage field: %v", record[logging.FieldStage])
	}
	if record[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("unexpected correlation field: %v", record[logging.FieldCorrelationID])
	}
}

func TestCleanupOldLogsPrunes(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "quilld-old.log")
	newPath := filepath.Join(dir, "quilld-new.log")
	for _, p := range []string{oldPath, newPath} {
		if err := os.WriteFile(p, []byte("log"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatalf("age old log: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "quilld-*.log",
		Exclude: []string{newPath},
	})

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old log pruned, stat err=%v", err)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("expected excluded log kept: %v", err)
	}
}
