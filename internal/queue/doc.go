// Package queue persists transcription jobs in SQLite and exposes the
// lifecycle operations the workflow manager drives.
//
// Items move through pending, fetching, fetched, transcribing, transcribed,
// rendering, completed, and failed. The three -ing states are processing
// states: items holding one carry a heartbeat, and on daemon startup or
// heartbeat expiry they roll back to the preceding completed state so the
// stage can run again. Failed items stay failed until an operator retries
// them.
package queue
