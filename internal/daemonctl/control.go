// Package daemonctl starts, stops, and inspects the quill daemon process on
// behalf of the CLI. Control traffic runs over the daemon HTTP API; the PID
// file under the log directory backs termination when the API is gone.
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/deps"
	"quill/internal/queue"
)

const (
	pidFileName  = "quilld.pid"
	lockFileName = "quilld.lock"
)

// ErrDaemonNotRunning indicates the daemon API is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	Stopped    bool
	ForcedKill bool
	PID        int
}

// Launch starts a detached quill daemon process running `daemon run`.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon", "run"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForAPI polls until the daemon API answers health checks and returns a
// connected client.
func WaitForAPI(ctx context.Context, bind string, timeout time.Duration) (*api.Client, error) {
	client, err := api.NewClient(bind)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		err := client.Health(ctx)
		if err == nil {
			return client, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches the daemon process unless its API already answers.
func EnsureStarted(ctx context.Context, bind, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	client, err := api.NewClient(bind)
	if err != nil {
		return StartResult{}, err
	}
	if err := client.Health(ctx); err == nil {
		return StartResult{State: StartStateAlreadyRunning}, nil
	}

	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	if _, err := WaitForAPI(ctx, bind, waitTimeout); err != nil {
		return StartResult{}, err
	}
	return StartResult{State: StartStateStarted, Launched: true}, nil
}

// WaitForShutdown waits for the daemon API to stop answering.
func WaitForShutdown(ctx context.Context, bind string, timeout time.Duration) error {
	client, err := api.NewClient(bind)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := client.Health(ctx); err != nil {
			if api.IsDaemonUnavailable(err) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("daemon did not stop: timeout waiting for shutdown")
}

// ProcessInfo reports whether the daemon API is reachable and the daemon PID
// when available.
func ProcessInfo(ctx context.Context, bind string) (bool, int, error) {
	client, err := api.NewClient(bind)
	if err != nil {
		return false, 0, err
	}
	status, err := client.Status(ctx)
	if err != nil {
		if api.IsDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return status.Running, status.PID, nil
}

// StopAndTerminate signals the daemon process to stop and force-kills it if
// still alive after gracePeriod. The daemon shuts down on SIGTERM; there is
// no stop RPC.
func StopAndTerminate(ctx context.Context, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	if cfg == nil {
		return StopResult{}, errors.New("configuration not available")
	}
	bind := cfg.Paths.APIBind

	client, err := api.NewClient(bind)
	if err != nil {
		return StopResult{}, err
	}
	status, err := client.Status(ctx)
	if err != nil {
		if api.IsDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}

	pid := status.PID
	if pid <= 0 {
		if filePID, readErr := ReadPIDFile(PIDFilePath(cfg)); readErr == nil {
			pid = filePID
		}
	}
	if pid <= 0 {
		return StopResult{}, fmt.Errorf("unable to determine daemon pid")
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to stop current process (pid %d)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	result := StopResult{Stopped: true, PID: pid}
	if err := WaitForShutdown(ctx, bind, gracePeriod); err == nil {
		return result, nil
	}

	killedPID, killErr := ForceKillProcess(PIDFilePath(cfg), LockFilePath(cfg), pid)
	if killErr != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", killErr)
	}
	result.ForcedKill = true
	result.PID = killedPID
	return result, nil
}

// ForceKillProcess sends SIGKILL to the daemon process and cleans pid/lock files.
func ForceKillProcess(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid := fallbackPID
	if filePID, err := ReadPIDFile(pidPath); err == nil {
		pid = filePID
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	if pid <= 0 {
		return 0, fmt.Errorf("unable to determine daemon pid (pid file: %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

// ReadPIDFile parses the daemon PID file.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %q holds invalid pid %q", path, pidStr)
	}
	return pid, nil
}

// PIDFilePath returns the daemon PID file location for a config.
func PIDFilePath(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, pidFileName)
}

// LockFilePath returns the daemon lock file location for a config.
func LockFilePath(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, lockFileName)
}

// StatusSnapshot collects daemon status over the API and falls back to local
// queue stats and dependency probes when the daemon is offline.
func StatusSnapshot(ctx context.Context, cfg *config.Config) (api.DaemonStatus, error) {
	if cfg == nil {
		return api.DaemonStatus{}, errors.New("configuration not available")
	}

	var status api.DaemonStatus
	client, err := api.NewClient(cfg.Paths.APIBind)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	if remote, err := client.Status(ctx); err == nil {
		status = remote
	}

	if !status.Running {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if store, openErr := queue.Open(cfg); openErr == nil {
			stats, statsErr := store.Stats(queryCtx)
			_ = store.Close()
			if statsErr == nil {
				status.Workflow.QueueStats = api.MergeQueueStats(stats)
			}
		}
		status.QueueDBPath = cfg.Paths.DBPath
		status.LockFilePath = LockFilePath(cfg)
		if status.LogPath == "" {
			status.LogPath = filepath.Join(cfg.Paths.LogDir, "quilld.log")
		}
	}

	if len(status.Dependencies) == 0 {
		status.Dependencies = api.FromDependencyStatuses(deps.Check(cfg))
	}
	return status, nil
}
