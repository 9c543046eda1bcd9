package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quill/internal/queue"
	"quill/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewFileJob(ctx, "/media/talks/state_of_go.mp4", "")
	if err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Title != "state of go" {
		t.Fatalf("expected title inferred from path, got %q", item.Title)
	}
	if item.SourceKind != queue.SourceFile {
		t.Fatalf("expected file source kind, got %s", item.SourceKind)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/media/talks/state_of_go.mp4" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewFileJobRequiresPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewFileJob(context.Background(), "  ", "No Path"); err == nil {
		t.Fatal("expected error when source path missing")
	}
}

func TestNewURLJobUsesURLAsPlaceholderTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	const url = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	item, err := store.NewURLJob(ctx, url)
	if err != nil {
		t.Fatalf("NewURLJob failed: %v", err)
	}
	if item.SourceKind != queue.SourceURL {
		t.Fatalf("expected url source kind, got %s", item.SourceKind)
	}
	if item.SourceURL != url || item.Title != url {
		t.Fatalf("expected url stored and used as title, got url=%q title=%q", item.SourceURL, item.Title)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
}

func TestNewTranscriptJobEntersFetched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewTranscriptJob(ctx, "Weekly Standup", "/notes/standup.srt", "1\n00:00:00,000 --> 00:00:02,000\nHello.\n", "SRT")
	if err != nil {
		t.Fatalf("NewTranscriptJob failed: %v", err)
	}
	if item.Status != queue.StatusFetched {
		t.Fatalf("expected transcript job to enter fetched, got %s", item.Status)
	}
	if item.SourceKind != queue.SourceTranscript {
		t.Fatalf("expected transcript source kind, got %s", item.SourceKind)
	}
	if item.DeclaredFormat != "srt" {
		t.Fatalf("expected declared format normalized to srt, got %q", item.DeclaredFormat)
	}
	if item.SourceText == "" {
		t.Fatal("expected source text persisted")
	}

	if _, err := store.NewTranscriptJob(ctx, "Empty", "", "   ", "txt"); err == nil {
		t.Fatal("expected error when transcript text blank")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"fetching", queue.StatusFetching, queue.StatusPending},
		{"transcribing", queue.StatusTranscribing, queue.StatusFetched},
		{"rendering", queue.StatusRendering, queue.StatusTranscribed},
	}
	var ids []int64
	for i, tc := range cases {
		item, err := store.NewFileJob(ctx, fmt.Sprintf("/media/reset-%d.mp3", i), fmt.Sprintf("Job-%s", tc.name))
		if err != nil {
			t.Fatalf("NewFileJob failed: %v", err)
		}
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		now := time.Now().UTC()
		item.LastHeartbeat = &now
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestItemsByStatusOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewFileJob(ctx, "/media/a.mp4", "Job A"); err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	b, err := store.NewFileJob(ctx, "/media/b.mp4", "Job B")
	if err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	b.Status = queue.StatusFetched
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.ItemsByStatus(ctx, queue.StatusFetched)
	if err != nil {
		t.Fatalf("ItemsByStatus failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one fetched item, got %d", len(items))
	}
	if items[0].Title != "Job B" {
		t.Fatalf("expected Job B, got %s", items[0].Title)
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewFileJob(ctx, "/media/a.mp4", "Job A")
	if err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	b, err := store.NewFileJob(ctx, "/media/b.mp4", "Job B")
	if err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	b.Status = queue.StatusFetched
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c, err := store.NewFileJob(ctx, "/media/c.mp4", "Job C")
	if err != nil {
		t.Fatalf("NewFileJob failed: %v", err)
	}
	c.Status = queue.StatusFailed
	c.ErrorMessage = "boom"
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatalf("expected order A,B,C, got IDs %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}

	filtered, err := store.List(ctx, queue.StatusFetched, queue.StatusFailed)
	if err != nil {
		t.Fatalf("Filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered))
	}
	if filtered[0].ID != b.ID || filtered[1].ID != c.ID {
		t.Fatalf("unexpected filtered order: got %d,%d", filtered[0].ID, filtered[1].ID)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewFileJob(ctx, "/media/a.mp4", "ItemA")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	b, err := store.NewFileJob(ctx, "/media/b.mp4", "ItemB")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	for _, item := range []*queue.Item{a, b} {
		item.Status = queue.StatusFailed
		item.ErrorMessage = "boom"
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	updated, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed all: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 items retried, got %d", updated)
	}

	item, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected item A pending, got %s", item.Status)
	}
	if item.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", item.ErrorMessage)
	}

	// Mark B failed again and retry targeted selection.
	b.Status = queue.StatusFailed
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err = store.RetryFailed(ctx, b.ID)
	if err != nil {
		t.Fatalf("RetryFailed targeted: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 item retried, got %d", updated)
	}
}

func TestUpdateHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewFileJob(ctx, "/media/heartbeat.mp4", "Heartbeat")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	item.Status = queue.StatusTranscribing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.LastHeartbeat == nil {
		t.Fatal("expected last heartbeat to be set")
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	t.Run("all statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()
		cases := []struct {
			name       string
			processing queue.Status
			expected   queue.Status
		}{
			{"fetching", queue.StatusFetching, queue.StatusPending},
			{"transcribing", queue.StatusTranscribing, queue.StatusFetched},
			{"rendering", queue.StatusRendering, queue.StatusTranscribed},
		}
		var ids []int64
		for i, tc := range cases {
			item, err := store.NewFileJob(ctx, fmt.Sprintf("/media/stale-%d.mp3", i), fmt.Sprintf("Stale-%s", tc.name))
			if err != nil {
				t.Fatalf("NewFileJob: %v", err)
			}
			item.Status = tc.processing
			item.LastHeartbeat = &past
			if err := store.Update(ctx, item); err != nil {
				t.Fatalf("Update: %v", err)
			}
			ids = append(ids, item.ID)
		}

		count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-1*time.Hour))
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing: %v", err)
		}
		if int(count) != len(cases) {
			t.Fatalf("expected %d items reclaimed, got %d", len(cases), count)
		}

		for idx, tc := range cases {
			updated, err := store.GetByID(ctx, ids[idx])
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if updated.Status != tc.expected {
				t.Fatalf("%s: expected status %s after reclaim, got %s", tc.name, tc.expected, updated.Status)
			}
			if updated.LastHeartbeat != nil {
				t.Fatalf("%s: expected heartbeat cleared, got %v", tc.name, updated.LastHeartbeat)
			}
		}
	})

	t.Run("filtered statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()

		fetching, err := store.NewFileJob(ctx, "/media/stale-fetch.mp4", "Stale-Fetching")
		if err != nil {
			t.Fatalf("NewFileJob fetching: %v", err)
		}
		fetching.Status = queue.StatusFetching
		fetching.LastHeartbeat = &past
		if err := store.Update(ctx, fetching); err != nil {
			t.Fatalf("Update fetching: %v", err)
		}

		rendering, err := store.NewFileJob(ctx, "/media/stale-render.mp4", "Stale-Rendering")
		if err != nil {
			t.Fatalf("NewFileJob rendering: %v", err)
		}
		rendering.Status = queue.StatusRendering
		rendering.LastHeartbeat = &past
		if err := store.Update(ctx, rendering); err != nil {
			t.Fatalf("Update rendering: %v", err)
		}

		count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-1*time.Hour), queue.StatusRendering)
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing filtered: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 item reclaimed, got %d", count)
		}

		reclaimed, err := store.GetByID(ctx, rendering.ID)
		if err != nil {
			t.Fatalf("GetByID rendering: %v", err)
		}
		if reclaimed.Status != queue.StatusTranscribed {
			t.Fatalf("expected rendering item rolled back to transcribed, got %s", reclaimed.Status)
		}
		if reclaimed.LastHeartbeat != nil {
			t.Fatalf("expected rendering heartbeat cleared, got %v", reclaimed.LastHeartbeat)
		}

		unchanged, err := store.GetByID(ctx, fetching.ID)
		if err != nil {
			t.Fatalf("GetByID fetching: %v", err)
		}
		if unchanged.Status != queue.StatusFetching {
			t.Fatalf("expected fetching item untouched, got %s", unchanged.Status)
		}
		if unchanged.LastHeartbeat == nil || !unchanged.LastHeartbeat.Equal(past) {
			t.Fatalf("expected fetching heartbeat unchanged, got %v", unchanged.LastHeartbeat)
		}
	})
}

func TestUpdateProgressPreservesHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewFileJob(ctx, "/media/progress.mp4", "Heartbeat Progress")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	item.Status = queue.StatusTranscribing
	past := time.Now().Add(-5 * time.Minute).UTC()
	item.LastHeartbeat = &past
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	before, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID before progress: %v", err)
	}
	if before.LastHeartbeat == nil {
		t.Fatal("expected heartbeat set before progress update")
	}
	origHeartbeat := *before.LastHeartbeat

	before.ProgressStage = "Transcribe"
	before.ProgressPercent = 42.5
	before.ProgressMessage = "Running speech recognition"
	if err := store.UpdateProgress(ctx, before); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	after, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID after progress: %v", err)
	}
	if after.LastHeartbeat == nil {
		t.Fatal("expected heartbeat preserved after progress update")
	}
	if !after.LastHeartbeat.Equal(origHeartbeat) {
		t.Fatalf("expected heartbeat unchanged, before %v after %v", origHeartbeat, after.LastHeartbeat)
	}
	if after.ProgressStage != "Transcribe" || after.ProgressMessage != "Running speech recognition" {
		t.Fatalf("expected progress fields persisted, got stage=%q message=%q", after.ProgressStage, after.ProgressMessage)
	}
	if after.ProgressPercent != 42.5 {
		t.Fatalf("expected progress percent 42.5, got %f", after.ProgressPercent)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []queue.Status{
		queue.StatusPending,
		queue.StatusTranscribing,
		queue.StatusCompleted,
		queue.StatusFailed,
	}
	for i, status := range statuses {
		item, err := store.NewFileJob(ctx, fmt.Sprintf("/media/stats-%d.mp4", i), fmt.Sprintf("Stats-%d", i))
		if err != nil {
			t.Fatalf("NewFileJob: %v", err)
		}
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 4 || health.Pending != 1 || health.Processing != 1 || health.Completed != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestCheckHealthReportsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewFileJob(ctx, "/media/a.mp4", "A")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	b, err := store.NewFileJob(ctx, "/media/b.mp4", "B")
	if err != nil {
		t.Fatalf("NewFileJob: %v", err)
	}
	b.Status = queue.StatusCompleted
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.Remove(ctx, a.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to report success")
	}
	removed, err = store.Remove(ctx, a.ID)
	if err != nil {
		t.Fatalf("Remove repeat: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report no rows")
	}

	cleared, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 completed item cleared, got %d", cleared)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue, got %d items", len(items))
	}
}
