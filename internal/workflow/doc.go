// Package workflow advances queue jobs through the configured processing
// stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// jobs into the registered stage handlers (ingest, transcribe, publish) while
// capturing progress and failure metadata. It also aggregates queue stats,
// calls stage health checks, and sends the error notification when a stage
// fails.
//
// Processing is strictly sequential: one job is in flight at a time, and each
// stage runs to completion before the next poll. Add new lifecycle stages by
// extending StageSet, updating the queue status enums, and teaching the
// manager how to transition jobs; this package is the authoritative home for
// that coordination logic.
package workflow
