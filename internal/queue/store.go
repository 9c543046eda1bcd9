package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"quill/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the queue database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DBPath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewFileJob enqueues a local media file for the full pipeline.
func (s *Store) NewFileJob(ctx context.Context, sourcePath, title string) (*Item, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("source path is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = inferTitleFromPath(sourcePath)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            title, source_kind, source_path, status, created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title,
		SourceFile,
		sourcePath,
		StatusPending,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert file job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// NewURLJob enqueues a remote video URL. The title is a placeholder until the
// fetch stage probes the source.
func (s *Store) NewURLJob(ctx context.Context, url string) (*Item, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("source url is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            title, source_kind, source_url, status, created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		url,
		SourceURL,
		url,
		StatusPending,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert url job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// NewTranscriptJob enqueues transcript text for re-rendering. The item enters
// the queue already fetched so the transcription stage parses the text instead
// of invoking speech recognition.
func (s *Store) NewTranscriptJob(ctx context.Context, title, sourcePath, sourceText, declaredFormat string) (*Item, error) {
	sourceText = strings.TrimRight(sourceText, "\n")
	if strings.TrimSpace(sourceText) == "" {
		return nil, errors.New("transcript text is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = inferTitleFromPath(sourcePath)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            title, source_kind, source_path, source_text, declared_format,
            status, created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title,
		SourceTranscript,
		nullableString(strings.TrimSpace(sourcePath)),
		sourceText,
		nullableString(strings.ToLower(strings.TrimSpace(declaredFormat))),
		StatusFetched,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcript job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a queue item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing queue item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET title = ?, source_kind = ?, source_path = ?, source_url = ?, source_text = ?,
             declared_format = ?, status = ?, media_path = ?, caption_path = ?, language = ?,
             transcript_json = ?, artifacts_json = ?, preview = ?, error_message = ?,
             updated_at = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             provenance_json = ?, last_heartbeat = ?
         WHERE id = ?`,
		nullableString(item.Title),
		item.SourceKind,
		nullableString(item.SourcePath),
		nullableString(item.SourceURL),
		nullableString(item.SourceText),
		nullableString(item.DeclaredFormat),
		item.Status,
		nullableString(item.MediaPath),
		nullableString(item.CaptionPath),
		nullableString(item.Language),
		nullableString(item.TranscriptJSON),
		nullableString(item.ArtifactsJSON),
		nullableString(item.Preview),
		nullableString(item.ErrorMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		nullableString(item.ProvenanceJSON),
		nullableTime(item.LastHeartbeat),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress columns, leaving the heartbeat and
// all other state untouched. Stages call this from tight loops.
func (s *Store) UpdateProgress(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// ItemsByStatus returns items matching a status ordered by creation time.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns queue items filtered by status set (or all items when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM queue_items`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest item matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + itemColumns + ` FROM queue_items WHERE status IN (` + placeholders + `) ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const itemColumns = "id, title, source_kind, source_path, source_url, source_text, declared_format, status, media_path, caption_path, language, transcript_json, artifacts_json, preview, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, provenance_json, last_heartbeat"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		title            sql.NullString
		sourceKind       string
		sourcePath       sql.NullString
		sourceURL        sql.NullString
		sourceText       sql.NullString
		declaredFormat   sql.NullString
		statusStr        string
		mediaPath        sql.NullString
		captionPath      sql.NullString
		language         sql.NullString
		transcriptJSON   sql.NullString
		artifactsJSON    sql.NullString
		preview          sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		provenanceJSON   sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&sourceKind,
		&sourcePath,
		&sourceURL,
		&sourceText,
		&declaredFormat,
		&statusStr,
		&mediaPath,
		&captionPath,
		&language,
		&transcriptJSON,
		&artifactsJSON,
		&preview,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&provenanceJSON,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		Title:           title.String,
		SourceKind:      SourceKind(sourceKind),
		SourcePath:      sourcePath.String,
		SourceURL:       sourceURL.String,
		SourceText:      sourceText.String,
		DeclaredFormat:  declaredFormat.String,
		Status:          Status(statusStr),
		MediaPath:       mediaPath.String,
		CaptionPath:     captionPath.String,
		Language:        language.String,
		TranscriptJSON:  transcriptJSON.String,
		ArtifactsJSON:   artifactsJSON.String,
		Preview:         preview.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		ProvenanceJSON:  provenanceJSON.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func inferTitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Untitled Transcript"
	}
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)
	cleaned := strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	if cleaned == "" {
		return "Untitled Transcript"
	}
	return cleaned
}
