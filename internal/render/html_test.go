package render_test

import (
	"strings"
	"testing"

	"quill/internal/render"
	"quill/internal/transcript"
)

func TestHTMLShowsTimestampBadges(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{
			{Start: 1.5, End: 4, Text: "first words"},
			{Start: 4, End: 125, Text: "second words"},
		},
		Text:  "first words second words",
		Timed: true,
	}

	got, err := render.HTML(tr, render.Metadata{Title: "Sample Talk"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if count := strings.Count(got, `<span class="timestamp">`); count != 2 {
		t.Fatalf("got %d timestamp badges, want 2", count)
	}
	if !strings.Contains(got, `<span class="timestamp">00:01</span>`) {
		t.Fatal("missing display time for first segment")
	}
	if !strings.Contains(got, "<strong>Duration:</strong> 2m 5s") {
		t.Fatal("missing duration row for timed transcript")
	}
}

func TestHTMLOmitsBadgesWithoutRealTimestamps(t *testing.T) {
	tr, err := transcript.ParsePlainText("Para one.\n\nPara two.")
	if err != nil {
		t.Fatalf("ParsePlainText failed: %v", err)
	}

	got, err := render.HTML(tr, render.Metadata{Title: "Notes"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(got, `<span class="timestamp">`) {
		t.Fatal("timestamp badges must be omitted for synthetic timing")
	}
	if strings.Contains(got, "<strong>Duration:</strong>") {
		t.Fatal("duration row must be omitted for synthetic timing")
	}
	if count := strings.Count(got, `<div class="segment">`); count != 2 {
		t.Fatalf("got %d segments, want 2", count)
	}
}

func TestHTMLEscapesContent(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{
			{Start: 1, End: 2, Text: `<script>alert("x")</script> & more`},
		},
		Text: `<script>alert("x")</script> & more`,
	}

	got, err := render.HTML(tr, render.Metadata{Title: `"quoted" <title>`})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(got, `<script>alert`) {
		t.Fatal("segment text was interpolated without escaping")
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Fatal("expected entity-escaped segment text")
	}
	if strings.Contains(got, "<title>Transcript: \"quoted\" <title></title>") {
		t.Fatal("title was interpolated without escaping")
	}
}

func TestHTMLRejectsUnsafeURLScheme(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: "words"}},
		Text:     "words",
	}

	got, err := render.HTML(tr, render.Metadata{
		Title:     "Talk",
		SourceURL: "javascript:alert(1)",
	})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(got, `href="javascript:`) {
		t.Fatal("unsafe URL scheme must not survive rendering")
	}
}

func TestHTMLProvenanceBlock(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: "words"}},
		Text:     "words",
	}

	got, err := render.HTML(tr, render.Metadata{
		Title:     "Conference Keynote",
		SourceURL: "https://www.youtube.com/watch?v=abc123",
		Author:    "Jordan Speaker",
	})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(got, "<strong>Original video link:</strong>") {
		t.Fatal("missing video link row")
	}
	if !strings.Contains(got, "<strong>Author:</strong> Jordan Speaker") {
		t.Fatal("missing author row")
	}

	plain, err := render.HTML(tr, render.Metadata{Title: "Conference Keynote"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(plain, "Original video link") || strings.Contains(plain, "<strong>Author:</strong>") {
		t.Fatal("provenance rows must be omitted when metadata is absent")
	}
}

func TestHTMLLanguageRow(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: "worte"}},
		Text:     "worte",
	}

	got, err := render.HTML(tr, render.Metadata{Title: "Vortrag", Language: "de"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(got, "<strong>Language:</strong> German") {
		t.Fatal("missing language row")
	}
	if !strings.Contains(got, `<html lang="de">`) {
		t.Fatal("document language attribute not set from transcript language")
	}

	plain, err := render.HTML(tr, render.Metadata{Title: "Vortrag", Language: transcript.LanguageUnknown})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(plain, "<strong>Language:</strong>") {
		t.Fatal("language row must be omitted for undetected language")
	}
	if !strings.Contains(plain, `<html lang="en">`) {
		t.Fatal("document language attribute must fall back to en")
	}
}

func TestHTMLParagraphGrouping(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 0, End: 2, Text: "ignored"}},
		Text:     "One. Two. Three. Four. Five.",
	}

	got, err := render.HTML(tr, render.Metadata{Title: "Talk", SentencesPerParagraph: 2})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if count := strings.Count(got, "<p>"); count != 3 {
		t.Fatalf("got %d paragraphs, want 3", count)
	}
}

func TestHTMLBrandDefaults(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: "words"}},
		Text:     "words",
	}

	got, err := render.HTML(tr, render.Metadata{Title: "Talk"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(got, "#8C1D40") || !strings.Contains(got, "#FFC627") {
		t.Fatal("default brand colors missing")
	}

	custom, err := render.HTML(tr, render.Metadata{
		Title: "Talk",
		Brand: render.Brand{Primary: "#003366", Accent: "#FF9900"},
	})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(custom, "#003366") || !strings.Contains(custom, "#FF9900") {
		t.Fatal("configured brand colors missing")
	}
}

func TestHTMLDeterministic(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Start: 3, End: 6, Text: "repeatable"}},
		Text:     "repeatable",
	}
	meta := render.Metadata{Title: "Talk", Author: "Someone"}

	first, err := render.HTML(tr, meta)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	second, err := render.HTML(tr, meta)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if first != second {
		t.Fatal("HTML output must be reproducible for identical inputs")
	}
}
