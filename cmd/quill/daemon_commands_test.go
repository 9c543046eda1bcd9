package main

import (
	"os"
	"strconv"
	"testing"
)

func TestDaemonStatusWithLiveDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, out, "Daemon running (pid "+strconv.Itoa(os.Getpid())+")")
	requireContains(t, out, "PID file:")
	requireContains(t, out, "Lock file:")
}

func TestDaemonStatusWithoutDaemon(t *testing.T) {
	env := setupOfflineCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}

func TestDaemonStopWithoutDaemon(t *testing.T) {
	env := setupOfflineCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "stop"}, env.configPath)
	if err != nil {
		t.Fatalf("daemon stop: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}
