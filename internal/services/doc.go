// Package services defines shared utilities consumed by the workflow stage
// handlers and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     uniform across stages while staying classifiable with errors.Is.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
