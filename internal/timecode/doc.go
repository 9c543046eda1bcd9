// Package timecode converts between floating-point second offsets and the
// textual timestamp encodings used by subtitle and transcript formats.
//
// Formatting covers the SRT form (HH:MM:SS,mmm), the VTT form (HH:MM:SS.mmm),
// the compact display form (MM:SS) shown next to transcript segments, and a
// coarse human-readable duration string. Parsing recovers the start and end
// offsets from a cue timing line such as
// "00:01:02,500 --> 00:01:05,000".
package timecode
