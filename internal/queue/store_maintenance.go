package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

func rollbackCaseClause(transitions []statusTransition) (string, []any) {
	var clause strings.Builder
	clause.WriteString("CASE status")
	args := make([]any, 0, len(transitions)*2)
	for _, tr := range transitions {
		clause.WriteString(" WHEN ? THEN ?")
		args = append(args, tr.from, tr.to)
	}
	clause.WriteString(" ELSE status END")
	return clause.String(), args
}

// ResetStuckProcessing rolls items stuck in processing states back to the
// preceding completed state. Called on daemon startup before workers launch.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	transitions := processingRollbackTransitions()
	caseClause, args := rollbackCaseClause(transitions)

	fromArgs := make([]any, 0, len(transitions))
	for _, tr := range transitions {
		fromArgs = append(fromArgs, tr.from)
	}

	query := `UPDATE queue_items
        SET status = ` + caseClause + `,
            progress_stage = 'Reset from stuck processing',
            progress_percent = 0, progress_message = NULL,
            last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(transitions)) + `)`

	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, fromArgs...)

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing rolls processing items whose heartbeat predates the
// cutoff back to the preceding completed state. When statuses are provided
// only those processing states are considered.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time, statuses ...Status) (int64, error) {
	transitions := processingRollbackTransitions()
	if len(statuses) > 0 {
		selected := make(map[Status]struct{}, len(statuses))
		for _, status := range statuses {
			selected[status] = struct{}{}
		}
		filtered := transitions[:0:0]
		for _, tr := range transitions {
			if _, ok := selected[tr.from]; ok {
				filtered = append(filtered, tr)
			}
		}
		transitions = filtered
	}
	if len(transitions) == 0 {
		return 0, nil
	}

	caseClause, args := rollbackCaseClause(transitions)
	fromArgs := make([]any, 0, len(transitions))
	for _, tr := range transitions {
		fromArgs = append(fromArgs, tr.from)
	}

	query := `UPDATE queue_items
        SET status = ` + caseClause + `,
            progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL,
            last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(transitions)) + `)
          AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`

	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, fromArgs...)
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed items back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE queue_items
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed)
	query := `UPDATE queue_items
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM queue_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// CheckHealth returns diagnostic information about the queue database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{
		DBPath:        s.path,
		SchemaVersion: "current",
	}

	if s.path == "" {
		return health, errors.New("queue database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat queue database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("queue database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping queue database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'queue_items'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		colsRows, err := s.db.QueryContext(connCtx, "PRAGMA table_info(queue_items)")
		if err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("table info: %w", err)
		}
		defer colsRows.Close()

		var columns []string
		for colsRows.Next() {
			var (
				cid     int
				name    string
				typeStr string
				notNull int
				dflt    any
				pk      int
			)
			if err := colsRows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
				health.Error = err.Error()
				return health, fmt.Errorf("scan table info: %w", err)
			}
			columns = append(columns, name)
		}
		if err := colsRows.Err(); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("iterate table info: %w", err)
		}
		health.ColumnsPresent = append(health.ColumnsPresent, columns...)

		expected := strings.Split(itemColumns, ", ")
		missingMap := make(map[string]struct{}, len(expected))
		for _, col := range expected {
			missingMap[col] = struct{}{}
		}
		for _, col := range columns {
			delete(missingMap, col)
		}
		for col := range missingMap {
			health.MissingColumns = append(health.MissingColumns, col)
		}

		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM queue_items")
		if err := row.Scan(&health.TotalItems); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count queue items: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// ClearCompleted removes only completed items from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed items from the queue.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all items from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
