package artifacts_test

import (
	"os"
	"path/filepath"
	"testing"

	"quill/internal/artifacts"
)

func TestSaveWritesAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writer := artifacts.NewWriter(dir)

	set := artifacts.Set{
		Text: "full text",
		SRT:  "1\n00:00:00,000 --> 00:00:01,000\nfull text\n\n",
		VTT:  "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nfull text\n\n",
		HTML: "<!DOCTYPE html>",
	}
	paths, err := writer.Save("MyVideo", set)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	checks := []struct {
		path string
		want string
	}{
		{paths.Text, set.Text},
		{paths.SRT, set.SRT},
		{paths.VTT, set.VTT},
		{paths.HTML, set.HTML},
	}
	for _, check := range checks {
		data, err := os.ReadFile(check.path)
		if err != nil {
			t.Fatalf("read %s: %v", check.path, err)
		}
		if string(data) != check.want {
			t.Fatalf("%s content = %q, want %q", check.path, data, check.want)
		}
	}

	if filepath.Base(paths.HTML) != "MyVideo.html" {
		t.Fatalf("HTML path = %q, want base name MyVideo.html", paths.HTML)
	}
}

func TestSaveRejectsEmptyBaseName(t *testing.T) {
	writer := artifacts.NewWriter(t.TempDir())
	if _, err := writer.Save("  ", artifacts.Set{}); err == nil {
		t.Fatal("Save with empty base name should fail")
	}
}

func TestPathsForFormat(t *testing.T) {
	paths := artifacts.Paths{Text: "/a.txt", SRT: "/a.srt", VTT: "/a.vtt", HTML: "/a.html"}

	tests := []struct {
		format string
		want   string
		ok     bool
	}{
		{"txt", "/a.txt", true},
		{"text", "/a.txt", true},
		{"SRT", "/a.srt", true},
		{"vtt", "/a.vtt", true},
		{"html", "/a.html", true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := paths.ForFormat(tt.format)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ForFormat(%q) = (%q, %v), want (%q, %v)", tt.format, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := (artifacts.Paths{}).ForFormat("txt"); ok {
		t.Fatal("ForFormat on empty paths should report not found")
	}
}
