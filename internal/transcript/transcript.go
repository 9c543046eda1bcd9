package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// LanguageUnknown is recorded when a source carries no language tag.
const LanguageUnknown = "unknown"

// ErrEmptyInput reports a transcript source that is empty after trimming.
var ErrEmptyInput = errors.New("empty transcript source")

// Segment is one spoken unit with a start and end offset in seconds.
// Ordering is caller-supplied and significant; segments are assumed
// non-overlapping with non-decreasing starts, but this is not validated.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the normalized representation every source parses into.
//
// Text is semantically the space-join of the segment texts, except for
// freeform input where Text is the original trimmed string while the
// segments are synthetic evenly-spaced slices of it. The two views may then
// disagree on paragraph boundaries; that approximation is deliberate.
//
// Timed records whether the segment offsets came from the source (cue files,
// speech recognition) or were fabricated so renderers have segments to
// iterate. Parsers set it; it is not inferred from the offsets themselves.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Timed    bool      `json:"timed"`
}

// HasTimestamps reports whether the segments carry real timing rather than
// the synthetic spacing fabricated for freeform text.
func (t Transcript) HasTimestamps() bool {
	return t.Timed && len(t.Segments) > 0
}

// Duration returns the end offset of the final segment, or zero when there
// are no segments.
func (t Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// Format identifies which parser handles a transcript source. Callers declare
// the format explicitly; nothing in this package infers it from file names.
type Format string

const (
	FormatSRT       Format = "srt"
	FormatVTT       Format = "vtt"
	FormatPlainText Format = "txt"
)

// ParseFormat maps a user-supplied format name or file extension to a
// Format. A leading dot and letter case are ignored.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")) {
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "txt", "text":
		return FormatPlainText, nil
	default:
		return "", fmt.Errorf("unsupported transcript format %q", value)
	}
}

// Parse dispatches source text to the parser for the declared format.
func Parse(format Format, source string) (Transcript, error) {
	switch format {
	case FormatSRT:
		return ParseSRT(source)
	case FormatVTT:
		return ParseVTT(source)
	case FormatPlainText:
		return ParsePlainText(source)
	default:
		return Transcript{}, fmt.Errorf("unsupported transcript format %q", format)
	}
}

// joinSegmentText rebuilds the full transcript text as the space-join of the
// segment texts in order.
func joinSegmentText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = segment.Text
	}
	return strings.Join(parts, " ")
}

// fallbackSegment wraps an entire document in one synthetic segment on the
// same placeholder time axis the freeform parser uses.
func fallbackSegment(text string) Segment {
	return Segment{Start: 0, End: 10, Text: text}
}
