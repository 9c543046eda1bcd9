package main

import "testing"

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "quill dev")
}
