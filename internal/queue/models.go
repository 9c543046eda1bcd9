package queue

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusFetching     Status = "fetching"
	StatusFetched      Status = "fetched"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusFetched,
	StatusTranscribing,
	StatusTranscribed,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusFetching:     {},
	StatusTranscribing: {},
	StatusRendering:    {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusFetching, to: StatusPending},
	{from: StatusTranscribing, to: StatusFetched},
	{from: StatusRendering, to: StatusTranscribed},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// SourceKind identifies where a queue item's input comes from.
type SourceKind string

const (
	SourceFile       SourceKind = "file"
	SourceURL        SourceKind = "url"
	SourceTranscript SourceKind = "transcript"
)

var sourceKindSet = map[SourceKind]struct{}{
	SourceFile:       {},
	SourceURL:        {},
	SourceTranscript: {},
}

// ParseSourceKind converts a string into a known SourceKind.
func ParseSourceKind(value string) (SourceKind, bool) {
	normalized := SourceKind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := sourceKindSet[normalized]
	return normalized, ok
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID              int64
	Title           string
	SourceKind      SourceKind
	SourcePath      string
	SourceURL       string
	SourceText      string
	DeclaredFormat  string
	Status          Status
	MediaPath       string
	CaptionPath     string
	Language        string
	TranscriptJSON  string
	ArtifactsJSON   string
	Preview         string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ProvenanceJSON  string
	LastHeartbeat   *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether the item has reached a final state.
func (i Item) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
// ProgressMessage is set to message, ProgressPercent is reset to 0,
// and ErrorMessage is cleared.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and ProgressMessage individually.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
// Convenience method for stage completion.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SourceLabel returns the most descriptive source reference for display.
func (i Item) SourceLabel() string {
	switch {
	case i.SourceURL != "":
		return i.SourceURL
	case i.SourcePath != "":
		return i.SourcePath
	default:
		return string(i.SourceKind)
	}
}

// StagingDir returns the per-item working directory beneath root.
func (i Item) StagingDir(root string) string {
	return filepath.Join(root, fmt.Sprintf("job-%d", i.ID))
}

// StageKey returns the normalized stage identifier used in API/CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	case StatusFetching,
		StatusFetched,
		StatusTranscribing,
		StatusTranscribed,
		StatusRendering,
		StatusFailed:
		return string(s)
	default:
		return ""
	}
}
