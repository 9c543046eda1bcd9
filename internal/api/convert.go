package api

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"quill/internal/deps"
	"quill/internal/queue"
	"quill/internal/stage"
	"quill/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	progressStage := item.ProgressStage
	if progressStage == "" {
		progressStage = item.Status.StageKey()
	}

	dto := QueueItem{
		ID:             item.ID,
		Title:          item.Title,
		SourceKind:     string(item.SourceKind),
		SourcePath:     item.SourcePath,
		SourceURL:      item.SourceURL,
		DeclaredFormat: item.DeclaredFormat,
		Status:         string(item.Status),
		Progress: QueueProgress{
			Stage:   progressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage: item.ErrorMessage,
		MediaPath:    item.MediaPath,
		CaptionPath:  item.CaptionPath,
		Language:     item.Language,
		Preview:      item.Preview,
	}

	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if paths, ok := decodeArtifactPaths(item.ArtifactsJSON); ok {
		dto.Artifacts = paths
	}
	if prov := queue.ProvenanceFromJSON(item.ProvenanceJSON); prov != (queue.Provenance{}) {
		dto.Provenance = &Provenance{
			URL:             prov.URL,
			Author:          prov.Author,
			DurationSeconds: prov.DurationSeconds,
		}
	}
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}

// FromDependencyStatuses converts dependency probe results to API payloads.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func decodeArtifactPaths(raw string) (*ArtifactPaths, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	var paths ArtifactPaths
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, false
	}
	if paths == (ArtifactPaths{}) {
		return nil, false
	}
	return &paths, true
}
