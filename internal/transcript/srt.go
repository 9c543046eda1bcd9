package transcript

import (
	"regexp"
	"strings"

	"quill/internal/timecode"
)

// blockBoundary splits subtitle documents on runs of blank lines.
var blockBoundary = regexp.MustCompile(`\n{2,}`)

// ParseSRT parses an SRT subtitle document. A block qualifies when it has at
// least three lines: a sequence number, a timing line, and one or more text
// lines which are space-joined. Blocks whose timing line does not parse are
// dropped. SRT carries no language tag, so Language is always "unknown".
func ParseSRT(source string) (Transcript, error) {
	content := normalizeNewlines(source)
	if content == "" {
		return Transcript{}, ErrEmptyInput
	}

	var segments []Segment
	for _, block := range blockBoundary.Split(content, -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		start, end, err := timecode.ParseSRTRange(lines[1])
		if err != nil {
			continue
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(strings.Join(lines[2:], " ")),
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

func normalizeNewlines(source string) string {
	return strings.TrimSpace(strings.ReplaceAll(source, "\r\n", "\n"))
}
