package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"quill/internal/language"
	"quill/internal/timecode"
	"quill/internal/transcript"
)

//go:embed templates/transcript.html.tmpl
var transcriptTemplate string

var pageTemplate = template.Must(template.New("transcript").Parse(transcriptTemplate))

type htmlSegment struct {
	Timestamp string
	Text      string
}

type htmlData struct {
	Title       string
	Brand       Brand
	LangCode    string
	Duration    string
	SourceURL   string
	Author      string
	Language    string
	HasMetadata bool
	Paragraphs  []string
	Segments    []htmlSegment
}

// HTML renders the searchable transcript page. The full text appears as
// display paragraphs, each segment appears in the segment list, and a
// timestamp badge is attached only when the transcript carries real timing.
// The duration row likewise appears only for real timing, since the
// synthetic freeform axis would report a meaningless value.
func HTML(t transcript.Transcript, meta Metadata) (string, error) {
	brand := meta.Brand
	if brand.Primary == "" || brand.Accent == "" {
		brand = DefaultBrand()
	}

	hasTimestamps := t.HasTimestamps()
	data := htmlData{
		Title:      meta.Title,
		Brand:      brand,
		LangCode:   "en",
		SourceURL:  meta.SourceURL,
		Author:     meta.Author,
		Paragraphs: transcript.SplitParagraphs(t.Text, meta.SentencesPerParagraph),
	}
	if hasTimestamps {
		data.Duration = timecode.FormatDuration(t.Duration())
	}
	if meta.Language != "" && meta.Language != transcript.LanguageUnknown {
		data.Language = language.DisplayName(meta.Language)
		if code := language.ToISO2(meta.Language); code != "" {
			data.LangCode = code
		}
	}
	data.HasMetadata = data.Duration != "" || data.SourceURL != "" || data.Author != "" || data.Language != ""

	data.Segments = make([]htmlSegment, 0, len(t.Segments))
	for _, segment := range t.Segments {
		entry := htmlSegment{Text: strings.TrimSpace(segment.Text)}
		if hasTimestamps {
			entry.Timestamp = timecode.FormatDisplay(segment.Start)
		}
		data.Segments = append(data.Segments, entry)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
