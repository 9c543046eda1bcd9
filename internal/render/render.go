package render

import (
	"fmt"
	"strings"

	"quill/internal/timecode"
	"quill/internal/transcript"
)

// Brand carries the colors applied to the HTML artifact. The defaults match
// the house style the tool shipped with.
type Brand struct {
	Primary string
	Accent  string
}

// DefaultBrand returns the maroon and gold palette used when no brand is
// configured.
func DefaultBrand() Brand {
	return Brand{Primary: "#8C1D40", Accent: "#FFC627"}
}

// Metadata carries the presentation inputs for the HTML artifact. Title is
// the display title; SourceURL, Author, and Language are optional provenance
// shown only when present.
type Metadata struct {
	Title                 string
	SourceURL             string
	Author                string
	Language              string
	SentencesPerParagraph int
	Brand                 Brand
}

// Text renders the plain-text artifact: the transcript's full text verbatim.
func Text(t transcript.Transcript) string {
	return t.Text
}

// SRT renders the SRT artifact: per segment a 1-based sequence number, the
// timing line, the trimmed text, and a blank-line separator.
func SRT(t transcript.Transcript) string {
	var b strings.Builder
	for i, segment := range t.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", timecode.FormatSRT(segment.Start), timecode.FormatSRT(segment.End))
		b.WriteString(strings.TrimSpace(segment.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// VTT renders the WebVTT artifact: the WEBVTT header followed by one cue per
// segment. Cue identifiers are not emitted.
func VTT(t transcript.Transcript) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, segment := range t.Segments {
		fmt.Fprintf(&b, "%s --> %s\n", timecode.FormatVTT(segment.Start), timecode.FormatVTT(segment.End))
		b.WriteString(strings.TrimSpace(segment.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}
