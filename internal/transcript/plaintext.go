package transcript

import "strings"

// plainTextSpacing is the synthetic segment length for freeform text. The
// resulting time axis is a placeholder so downstream renderers always have
// segments to iterate, not real timing.
const plainTextSpacing = 10

// ParsePlainText parses freeform transcript text. Paragraphs are split on
// blank-line boundaries (the whole text is one paragraph when there are
// none) and each paragraph becomes a segment spaced plainTextSpacing seconds
// apart starting at zero.
//
// Text keeps the original trimmed input verbatim rather than re-joining the
// synthesized segments, so paragraph breaks survive a plain-text round trip
// even though the segment view flattens them.
func ParsePlainText(source string) (Transcript, error) {
	text := strings.TrimSpace(source)
	if text == "" {
		return Transcript{}, ErrEmptyInput
	}

	var paragraphs []string
	for _, part := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	if len(paragraphs) == 0 {
		paragraphs = []string{text}
	}

	segments := make([]Segment, 0, len(paragraphs))
	for i, paragraph := range paragraphs {
		segments = append(segments, Segment{
			Start: float64(i * plainTextSpacing),
			End:   float64((i + 1) * plainTextSpacing),
			Text:  paragraph,
		})
	}

	return Transcript{
		Segments: segments,
		Text:     text,
		Language: LanguageUnknown,
	}, nil
}
