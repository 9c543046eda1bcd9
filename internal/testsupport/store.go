package testsupport

import (
	"context"
	"testing"

	"quill/internal/config"
	"quill/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewFileJob creates a new file-backed item for tests using the provided store.
func NewFileJob(t testing.TB, store *queue.Store, sourcePath, title string) *queue.Item {
	t.Helper()

	item, err := store.NewFileJob(context.Background(), sourcePath, title)
	if err != nil {
		t.Fatalf("store.NewFileJob: %v", err)
	}
	return item
}
