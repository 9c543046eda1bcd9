package ingest

import (
	"path/filepath"
	"strings"
)

var mediaExtensionList = []string{
	"mp4", "avi", "mov", "mkv", "flv", "wmv", "webm",
	"mp3", "wav", "aac", "m4a", "flac", "ogg",
}

var transcriptExtensionList = []string{"txt", "srt", "vtt"}

var (
	mediaExtensions      = extensionSet(mediaExtensionList)
	transcriptExtensions = extensionSet(transcriptExtensionList)
)

func extensionSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, ext := range list {
		set["."+ext] = struct{}{}
	}
	return set
}

// AllowedMediaFile reports whether path carries a supported audio or video
// extension. Matching is case-insensitive and looks only at the extension,
// never at file content.
func AllowedMediaFile(path string) bool {
	return hasExtension(path, mediaExtensions)
}

// AllowedTranscriptFile reports whether path carries a supported transcript
// extension.
func AllowedTranscriptFile(path string) bool {
	return hasExtension(path, transcriptExtensions)
}

func hasExtension(path string, set map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
	_, ok := set[ext]
	return ok
}

// MediaExtensions returns the supported media extensions without leading dots,
// in display order.
func MediaExtensions() []string {
	return append([]string(nil), mediaExtensionList...)
}

// TranscriptExtensions returns the supported transcript extensions without
// leading dots, in display order.
func TranscriptExtensions() []string {
	return append([]string(nil), transcriptExtensionList...)
}
