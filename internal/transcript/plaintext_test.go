package transcript

import (
	"errors"
	"testing"
)

func TestParsePlainTextTwoParagraphs(t *testing.T) {
	got, err := ParsePlainText("Para one.\n\nPara two.")
	if err != nil {
		t.Fatalf("ParsePlainText failed: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(got.Segments))
	}
	if got.Segments[0].Start != 0 || got.Segments[1].Start != 10 {
		t.Fatalf("starts = (%v, %v), want (0, 10)", got.Segments[0].Start, got.Segments[1].Start)
	}
	if got.Segments[0].End != 10 || got.Segments[1].End != 20 {
		t.Fatalf("ends = (%v, %v), want (10, 20)", got.Segments[0].End, got.Segments[1].End)
	}
	if got.Text != "Para one.\n\nPara two." {
		t.Fatalf("Text = %q, want the original input verbatim", got.Text)
	}
	if got.HasTimestamps() {
		t.Fatal("synthetic segments must not report real timestamps")
	}
}

func TestParsePlainTextSingleParagraph(t *testing.T) {
	got, err := ParsePlainText("  One paragraph without any blank lines.\nStill the same paragraph.  ")
	if err != nil {
		t.Fatalf("ParsePlainText failed: %v", err)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(got.Segments))
	}
	want := "One paragraph without any blank lines.\nStill the same paragraph."
	if got.Segments[0].Text != want {
		t.Fatalf("segment text = %q", got.Segments[0].Text)
	}
	if got.Text != want {
		t.Fatalf("Text = %q", got.Text)
	}
}

func TestParsePlainTextSkipsWhitespaceParagraphs(t *testing.T) {
	got, err := ParsePlainText("first\n\n   \n\nsecond")
	if err != nil {
		t.Fatalf("ParsePlainText failed: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(got.Segments))
	}
	if got.Segments[0].Text != "first" || got.Segments[1].Text != "second" {
		t.Fatalf("segment texts = %q, %q", got.Segments[0].Text, got.Segments[1].Text)
	}
}

func TestParsePlainTextEmpty(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\n"} {
		if _, err := ParsePlainText(source); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("ParsePlainText(%q) err = %v, want ErrEmptyInput", source, err)
		}
	}
}
