package main

import "testing"

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "not configured")
}

func TestTestNotifyWithoutDaemon(t *testing.T) {
	env := setupOfflineCLITestEnv(t)

	_, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without daemon")
	}
	requireContains(t, err.Error(), "daemon is not running")
}
