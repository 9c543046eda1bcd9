package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

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

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	daemon     *daemon.Daemon
	configPath string
	baseDir    string
}

// setupOfflineCLITestEnv prepares a config file and queue store without a
// running daemon. The API bind points at an unreachable port so commands take
// the direct store path.
func setupOfflineCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	// Long poll interval so the workflow never picks up items mid-test.
	cfg.Workflow.QueuePollInterval = 3600

	configPath := filepath.Join(homeDir, ".config", "quill", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		configPath: configPath,
		baseDir:    base,
	}
}

// setupCLITestEnv additionally starts a live daemon on an ephemeral port and
// rewrites the config file so CLI commands reach it over HTTP.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := setupOfflineCLITestEnv(t)

	logger := logging.NewNop()
	mgr := workflow.NewManager(env.cfg, env.store, logger)
	mgr.ConfigureStages(workflow.StageSet{Ingest: noopStage{}})

	d, err := daemon.New(env.cfg, env.store, logger, mgr, "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	env.daemon = d
	env.cfg.Paths.APIBind = d.APIAddr()
	writeTestConfig(t, env.configPath, env.cfg)

	t.Cleanup(func() {
		cancel()
		_ = d.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\noutput_dir = %q\nstaging_dir = %q\nlog_dir = %q\ndb_path = %q\napi_bind = %q\n\n[workflow]\nqueue_poll_interval = %d\n",
		cfg.Paths.OutputDir,
		cfg.Paths.StagingDir,
		cfg.Paths.LogDir,
		cfg.Paths.DBPath,
		cfg.Paths.APIBind,
		cfg.Workflow.QueuePollInterval,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
