// Package transcribe turns a fetched queue item into the normalized
// transcript model.
//
// The input decides the path: transcript sources are parsed with their
// declared format, staged caption files go through the VTT parser, and
// staged media runs through Whisper speech recognition. Whichever path
// produced it, the transcript is serialized into the queue item so the
// publish stage can render without re-deriving anything.
package transcribe
