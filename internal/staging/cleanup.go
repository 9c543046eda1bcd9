// Package staging reclaims per-job working directories beneath the staging
// root. Stages write downloads and intermediate transcription output into
// job-<id> directories; once a job settles (completes, fails, or is removed
// from the queue) the directory is scrap. The daemon sweeps it on startup.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quill/internal/logging"
	"quill/internal/queue"
)

const jobDirPrefix = "job-"

// Result reports which directories a cleanup pass removed and which failed.
type Result struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with the error that kept it in place.
type CleanupError struct {
	Path string
	Err  error
}

// ItemLookup resolves queue items by ID. A nil item with a nil error means
// the item no longer exists.
type ItemLookup interface {
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
}

// CleanSettled removes job-<id> staging directories whose queue item is
// completed, failed, or gone. Directories backing in-flight jobs and entries
// that do not follow the job-<id> naming are left untouched. Failed jobs are
// safe to sweep because a retry restarts from the ingest stage and restages
// its inputs.
func CleanSettled(ctx context.Context, stagingDir string, store ItemLookup, logger *slog.Logger) Result {
	result := Result{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" || store == nil {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Err: err})
		}
		return result
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, ok := parseJobDirName(entry.Name())
		if !ok {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())

		item, err := store.GetByID(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Err: err})
			continue
		}
		if item != nil && !settled(item.Status) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Err: err})
			if logger != nil {
				logger.Warn("failed to remove staging directory",
					logging.String("path", dirPath),
					logging.Error(err),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed settled staging directory",
				logging.String("path", dirPath),
				logging.Int64(logging.FieldJobID, id),
			)
		}
	}

	return result
}

func settled(status queue.Status) bool {
	switch status {
	case queue.StatusCompleted, queue.StatusFailed:
		return true
	default:
		return false
	}
}

func parseJobDirName(name string) (int64, bool) {
	if !strings.HasPrefix(name, jobDirPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(name[len(jobDirPrefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
