package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLogFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quilld.log")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	return path
}

func TestTailReturnsLastLinesInOrder(t *testing.T) {
	path := writeLogFile(t, "one", "two", "three", "four", "five")

	lines, err := Tail(path, 3)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	want := []string{"three", "four", "five"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d: expected %q, got %q", i, line, lines[i])
		}
	}
}

func TestTailShortFile(t *testing.T) {
	path := writeLogFile(t, "only")

	lines, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("expected single line, got %v", lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if lines != nil {
		t.Fatalf("expected no lines for missing file, got %v", lines)
	}
}

func TestTailZeroLimit(t *testing.T) {
	path := writeLogFile(t, "one", "two")

	lines, err := Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if lines != nil {
		t.Fatalf("expected no lines for zero limit, got %v", lines)
	}
}

func TestTailDirectory(t *testing.T) {
	if _, err := Tail(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory path")
	}
}
