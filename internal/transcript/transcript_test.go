package transcript

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"srt", "srt", FormatSRT},
		{"uppercase", "SRT", FormatSRT},
		{"dotted extension", ".vtt", FormatVTT},
		{"txt", "txt", FormatPlainText},
		{"text alias", "text", FormatPlainText},
		{"padded", "  vtt ", FormatVTT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("docx"); err == nil {
		t.Fatal("ParseFormat(\"docx\") should fail")
	}
}

func TestParseDispatch(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:02,000\nhello\n"
	got, err := Parse(FormatSRT, srt)
	if err != nil {
		t.Fatalf("Parse(FormatSRT) failed: %v", err)
	}
	if len(got.Segments) != 1 || got.Segments[0].Text != "hello" {
		t.Fatalf("unexpected SRT dispatch result: %+v", got)
	}

	if _, err := Parse(Format("pdf"), "content"); err == nil {
		t.Fatal("Parse with unknown format should fail")
	}
}

func TestHasTimestamps(t *testing.T) {
	tests := []struct {
		name string
		tr   Transcript
		want bool
	}{
		{"no segments", Transcript{}, false},
		{"timed but empty", Transcript{Timed: true}, false},
		{"untimed segments", Transcript{Segments: []Segment{{Start: 0, End: 10, Text: "a"}}}, false},
		{"timed from zero", Transcript{Timed: true, Segments: []Segment{{Start: 0, End: 5, Text: "a"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.HasTimestamps(); got != tt.want {
				t.Fatalf("HasTimestamps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tr := Transcript{Segments: []Segment{
		{Start: 0, End: 4.5, Text: "a"},
		{Start: 4.5, End: 9.25, Text: "b"},
	}}
	if got := tr.Duration(); got != 9.25 {
		t.Fatalf("Duration() = %v, want 9.25", got)
	}
	if got := (Transcript{}).Duration(); got != 0 {
		t.Fatalf("empty Duration() = %v, want 0", got)
	}
}

func TestParseEmptyInputSentinel(t *testing.T) {
	for _, format := range []Format{FormatSRT, FormatVTT, FormatPlainText} {
		if _, err := Parse(format, "   "); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Parse(%q, blank) err = %v, want ErrEmptyInput", format, err)
		}
	}
}
