// Package transcript defines the shared in-memory transcript representation
// and the parsers that produce it from caption and text sources.
//
// Every source shape (SRT subtitles, WebVTT cues, freeform text,
// speech-recognition output) normalizes into the same Transcript value: an
// ordered list of time-coded segments plus the full transcript text. All
// downstream rendering works from that one representation.
//
// Parsers are permissive: individual malformed cue blocks are dropped rather
// than failing the document, and a non-empty document that yields no usable
// blocks degrades to a single segment wrapping the whole text. Only input
// that is empty after trimming is rejected.
package transcript
