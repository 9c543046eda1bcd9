package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/queue"
	"quill/internal/testsupport"
)

func TestQueueListShowsItems(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "alpha-talk.mp3")
	testsupport.WriteFile(t, mediaPath, 128)
	if _, err := env.store.NewFileJob(ctx, mediaPath, "Alpha Talk"); err != nil {
		t.Fatalf("alpha job: %v", err)
	}

	beta, err := env.store.NewURLJob(ctx, "https://www.youtube.com/watch?v=beta123")
	if err != nil {
		t.Fatalf("beta job: %v", err)
	}
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Alpha Talk")
	requireContains(t, out, "beta123")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"queue", "list", "-s", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list failed: %v", err)
	}
	requireContains(t, out, "beta123")
	if strings.Contains(out, "Alpha Talk") {
		t.Fatalf("filtered list should not include Alpha Talk:\n%s", out)
	}
}

func TestQueueListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueShowDetail(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "keynote.mkv")
	testsupport.WriteFile(t, mediaPath, 256)
	item, err := env.store.NewFileJob(ctx, mediaPath, "Keynote")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "show", fmt.Sprintf("%d", item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Job #%d: Keynote", item.ID))
	requireContains(t, out, "file "+mediaPath)
	requireContains(t, out, "Pending")

	out, _, err = runCLI(t, []string{"queue", "show", "9999"}, env.configPath)
	if err != nil {
		t.Fatalf("queue show missing: %v", err)
	}
	requireContains(t, out, "Job 9999 not found")
}

func TestQueueShowRejectsBadID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "show", "abc"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	requireContains(t, err.Error(), "invalid job id")
}

func TestQueueRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "clip.mp4")
	testsupport.WriteFile(t, mediaPath, 64)
	item, err := env.store.NewFileJob(ctx, mediaPath, "Clip")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Job %d removed", item.ID))

	out, _, err = runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue remove repeat: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Job %d not found", item.ID))
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "panel.wav")
	testsupport.WriteFile(t, mediaPath, 64)
	alpha, err := env.store.NewFileJob(ctx, mediaPath, "Panel")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed jobs")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed jobs")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "lecture.mp3")
	testsupport.WriteFile(t, mediaPath, 64)
	alpha, err := env.store.NewFileJob(ctx, mediaPath, "Lecture")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", alpha.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Job %d reset for retry", alpha.ID))
}

func TestQueueRetryNonFailedID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "interview.mp3")
	testsupport.WriteFile(t, mediaPath, 64)
	item, err := env.store.NewFileJob(ctx, mediaPath, "Interview")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Job %d is not in failed state", item.ID))

	out, _, err = runCLI(t, []string{"queue", "retry", "9999"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry missing: %v", err)
	}
	requireContains(t, out, "Job 9999 not found")
}

func TestQueueClearRejectsConflictingFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "clear", "--completed", "--failed"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for conflicting flags")
	}
	requireContains(t, err.Error(), "only one of")
}

func TestQueueCommandsWithoutDaemon(t *testing.T) {
	env := setupOfflineCLITestEnv(t)
	ctx := context.Background()

	mediaPath := filepath.Join(env.baseDir, "workshop.mp3")
	testsupport.WriteFile(t, mediaPath, 64)
	item, err := env.store.NewFileJob(ctx, mediaPath, "Workshop")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list offline: %v", err)
	}
	requireContains(t, out, "Workshop")

	out, _, err = runCLI(t, []string{"queue", "show", fmt.Sprintf("%d", item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("queue show offline: %v", err)
	}
	requireContains(t, out, "Workshop")

	_, _, err = runCLI(t, []string{"queue", "list", "-s", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	requireContains(t, err.Error(), "unknown status")
}
