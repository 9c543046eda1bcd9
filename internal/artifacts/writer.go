package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/fileutil"
)

// Set holds the rendered content for one transcript, one field per output
// format.
type Set struct {
	Text string
	SRT  string
	VTT  string
	HTML string
}

// Paths records where each artifact of a set was written. The JSON keys are
// the format keys used throughout the API.
type Paths struct {
	Text string `json:"txt"`
	SRT  string `json:"srt"`
	VTT  string `json:"vtt"`
	HTML string `json:"html"`
}

// ForFormat returns the recorded path for a format key.
func (p Paths) ForFormat(format string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "txt", "text":
		return p.Text, p.Text != ""
	case "srt":
		return p.SRT, p.SRT != ""
	case "vtt":
		return p.VTT, p.VTT != ""
	case "html":
		return p.HTML, p.HTML != ""
	default:
		return "", false
	}
}

// Writer persists artifact sets under one output directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir. The directory is created on the
// first save.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes the four artifacts as <baseName>.{txt,srt,vtt,html} under the
// writer's directory. Each file is written atomically, but the writes are
// independent; a failure part way through leaves the earlier files in place
// and reports the failed one.
func (w *Writer) Save(baseName string, set Set) (Paths, error) {
	baseName = strings.TrimSpace(baseName)
	if baseName == "" {
		return Paths{}, errors.New("artifact base name is empty")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output directory: %w", err)
	}

	paths := Paths{
		Text: filepath.Join(w.dir, baseName+".txt"),
		SRT:  filepath.Join(w.dir, baseName+".srt"),
		VTT:  filepath.Join(w.dir, baseName+".vtt"),
		HTML: filepath.Join(w.dir, baseName+".html"),
	}
	writes := []struct {
		path    string
		content string
	}{
		{paths.Text, set.Text},
		{paths.SRT, set.SRT},
		{paths.VTT, set.VTT},
		{paths.HTML, set.HTML},
	}
	for _, entry := range writes {
		if err := fileutil.WriteFileAtomic(entry.path, []byte(entry.content), 0o644); err != nil {
			return Paths{}, fmt.Errorf("write %s: %w", filepath.Base(entry.path), err)
		}
	}
	return paths, nil
}
