// Package api defines wire-format types and converters for the daemon HTTP
// API. It translates internal queue models into transport-friendly DTOs and
// provides the client the CLI uses to talk to a running daemon.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress,
// artifact paths, preview text, and source provenance.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last
// processed item.
//
// DaemonStatus: aggregated runtime information including external dependency
// availability.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with artifact and provenance JSON
// decoded into structured fields.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of the stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status,
// queue.SourceKind) are exposed as lowercase strings. Timestamps use RFC3339
// with milliseconds. Artifact paths keep the format keys (txt/srt/vtt/html)
// used by the artifact download endpoint.
package api
