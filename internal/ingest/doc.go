// Package ingest resolves a queue item's source descriptor into local input
// for the transcribe stage.
//
// Local media files are validated against the supported extension set and
// copied into the item's staging directory so later stages never depend on
// the original path surviving. Video URLs take a captions-first fast path:
// when an English caption track exists the stage records it and skips audio
// entirely; otherwise it downloads the best audio as MP3. Both URL paths
// capture video provenance (link, uploader, duration) for the rendered page.
// Transcript sources carry their text inline and pass through untouched.
package ingest
