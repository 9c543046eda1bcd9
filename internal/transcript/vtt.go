package transcript

import (
	"strings"

	"quill/internal/timecode"
)

// ParseVTT parses a WebVTT caption document. A leading WEBVTT header line is
// stripped when present; header metadata lines (Kind, Language) form a block
// without a timing line and fall out naturally. Within each block the timing
// line may be the first or second line, tolerating an optional leading cue
// identifier; the remaining lines are space-joined as the cue text. Blocks
// with no "-->" on either candidate line are dropped. Language is always
// "unknown" because the header metadata is not interpreted.
func ParseVTT(source string) (Transcript, error) {
	content := normalizeNewlines(source)
	if content == "" {
		return Transcript{}, ErrEmptyInput
	}

	content = strings.TrimSpace(stripVTTHeader(content))
	if content == "" {
		return Transcript{}, ErrEmptyInput
	}

	var segments []Segment
	for _, block := range blockBoundary.Split(content, -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		timingIdx := -1
		switch {
		case strings.Contains(lines[0], "-->"):
			timingIdx = 0
		case strings.Contains(lines[1], "-->"):
			timingIdx = 1
		}
		if timingIdx < 0 {
			continue
		}
		start, end, err := timecode.ParseVTTRange(lines[timingIdx])
		if err != nil {
			continue
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(strings.Join(lines[timingIdx+1:], " ")),
		})
	}
	timed := len(segments) > 0
	if len(segments) == 0 {
		segments = []Segment{fallbackSegment(content)}
	}

	return Transcript{
		Segments: segments,
		Text:     joinSegmentText(segments),
		Language: LanguageUnknown,
		Timed:    timed,
	}, nil
}

func stripVTTHeader(content string) string {
	if !strings.HasPrefix(content, "WEBVTT") {
		return content
	}
	idx := strings.Index(content, "\n")
	if idx < 0 {
		return ""
	}
	return content[idx+1:]
}
