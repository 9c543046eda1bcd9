package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"quill/internal/api"
)

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildQueueListRows(items []api.QueueItem) [][]string {
	if len(items) == 0 {
		return nil
	}
	sorted := api.SortQueueItemsNewestFirst(items)

	rows := make([][]string, 0, len(sorted))
	for _, item := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			queueItemTitle(item),
			formatStatusLabel(item.Status),
			item.Progress.Stage,
			formatDisplayTime(item.CreatedAt),
		})
	}
	return rows
}

func queueItemTitle(item api.QueueItem) string {
	if title := strings.TrimSpace(item.Title); title != "" {
		return title
	}
	if source := strings.TrimSpace(item.SourcePath); source != "" {
		return filepath.Base(source)
	}
	if url := strings.TrimSpace(item.SourceURL); url != "" {
		return url
	}
	return "Unknown"
}

func queueItemSource(item api.QueueItem) string {
	switch item.SourceKind {
	case "url":
		return "url " + item.SourceURL
	case "transcript":
		if strings.TrimSpace(item.SourcePath) != "" {
			return "transcript " + item.SourcePath
		}
		return "transcript (inline text)"
	default:
		return "file " + item.SourcePath
	}
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t := api.ParseQueueTime(value); !t.IsZero() {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}
