package transcript

import (
	"errors"
	"testing"
)

func TestParseSRTTwoBlocks(t *testing.T) {
	source := "1\n00:00:00,000 --> 00:00:02,500\nHello world\n\n2\n00:00:02,500 --> 00:00:05,000\nGoodbye\n\n"

	got, err := ParseSRT(source)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(got.Segments))
	}
	if got.Text != "Hello world Goodbye" {
		t.Fatalf("Text = %q, want %q", got.Text, "Hello world Goodbye")
	}
	if got.Language != LanguageUnknown {
		t.Fatalf("Language = %q, want %q", got.Language, LanguageUnknown)
	}
	first := got.Segments[0]
	if first.Start != 0 || first.End != 2.5 || first.Text != "Hello world" {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	second := got.Segments[1]
	if second.Start != 2.5 || second.End != 5 || second.Text != "Goodbye" {
		t.Fatalf("unexpected second segment: %+v", second)
	}
}

func TestParseSRTJoinsMultilineText(t *testing.T) {
	source := "1\n00:00:01,000 --> 00:00:04,000\nfirst line\nsecond line\n"

	got, err := ParseSRT(source)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(got.Segments))
	}
	if got.Segments[0].Text != "first line second line" {
		t.Fatalf("Text = %q, want joined lines", got.Segments[0].Text)
	}
}

func TestParseSRTDropsMalformedBlocks(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"bad timing line", "1\nnot a timestamp\nsome text"},
		{"two lines only", "1\n00:00:01,000 --> 00:00:02,000"},
		{"period separator", "1\n00:00:01.000 --> 00:00:02.000\ntext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.block + "\n\n2\n00:00:05,000 --> 00:00:06,000\nkept\n"
			got, err := ParseSRT(source)
			if err != nil {
				t.Fatalf("ParseSRT failed: %v", err)
			}
			if len(got.Segments) != 1 {
				t.Fatalf("got %d segments, want only the valid block", len(got.Segments))
			}
			if got.Segments[0].Text != "kept" {
				t.Fatalf("kept segment text = %q", got.Segments[0].Text)
			}
		})
	}
}

func TestParseSRTFallsBackToSingleSegment(t *testing.T) {
	got, err := ParseSRT("just some prose with no subtitle structure")
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(got.Segments))
	}
	if got.Segments[0].Text != "just some prose with no subtitle structure" {
		t.Fatalf("fallback text = %q", got.Segments[0].Text)
	}
	if got.HasTimestamps() {
		t.Fatal("fallback segment must not report real timestamps")
	}
}

func TestParseSRTEmptyInput(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\n\n"} {
		if _, err := ParseSRT(source); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("ParseSRT(%q) err = %v, want ErrEmptyInput", source, err)
		}
	}
}

func TestParseSRTWindowsLineEndings(t *testing.T) {
	source := "1\r\n00:00:00,500 --> 00:00:02,000\r\nhello\r\n\r\n2\r\n00:00:02,000 --> 00:00:03,000\r\nthere\r\n"

	got, err := ParseSRT(source)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(got.Segments))
	}
	if got.Text != "hello there" {
		t.Fatalf("Text = %q", got.Text)
	}
}
