package textutil

import "testing"

func TestSafeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "My Video", "My Video"},
		{"unsafe characters", `What? A "Test": <part/one>`, "What A Test partone"},
		{"accents fold to ascii", "Café Révolution", "Cafe Revolution"},
		{"non-latin dropped", "日本語 title", "title"},
		{"whitespace collapsed", "  spaced\t\tout \n name ", "spaced out name"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDisplayName(tt.input); got != tt.want {
				t.Fatalf("SafeDisplayName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuated title", "My Video: Intro!", "MyVideo"},
		{"interior casing preserved", "the iPhone review", "TheIPhoneReview"},
		{"acronyms kept", "NASA launch UPDATE", "NASALaunchUPDATE"},
		{"digits kept", "lecture 12 part 2", "Lecture12Part2"},
		{"only punctuation", "?!*", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identifier(tt.input); got != tt.want {
				t.Fatalf("Identifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentifierIdempotent(t *testing.T) {
	inputs := []string{"My Video: Intro!", "plain words", "MiXeD CaSe 99", "already OneWord"}
	for _, input := range inputs {
		once := Identifier(input)
		twice := Identifier(once)
		if once != twice {
			t.Fatalf("Identifier not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
