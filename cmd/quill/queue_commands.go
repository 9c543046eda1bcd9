package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/queue"
	"quill/internal/timecode"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				items, err := fetchQueueItems(cmd, client, store, listStatuses)
				if err != nil {
					return err
				}
				if asJSON {
					if items == nil {
						items = []api.QueueItem{}
					}
					return writeJSON(cmd, api.SortQueueItemsNewestFirst(items))
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Stage", "Created"},
					buildQueueListRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func fetchQueueItems(cmd *cobra.Command, client *api.Client, store *queue.Store, statuses []string) ([]api.QueueItem, error) {
	if client != nil {
		return client.Queue(cmd.Context(), statuses...)
	}
	parsed, err := parseStatusFilters(statuses)
	if err != nil {
		return nil, err
	}
	return api.NewQueueService(store).List(cmd.Context(), parsed...)
}

func parseStatusFilters(statuses []string) ([]queue.Status, error) {
	var parsed []queue.Status
	for _, value := range statuses {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := queue.ParseStatus(trimmed)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", trimmed)
		}
		parsed = append(parsed, status)
	}
	return parsed, nil
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			id := ids[0]

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				var item *api.QueueItem
				if client != nil {
					item, err = client.QueueItem(cmd.Context(), id)
				} else {
					item, err = api.NewQueueService(store).Describe(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				if item == nil {
					if asJSON {
						return writeJSON(cmd, map[string]any{"error": "not_found", "id": id})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Job %d not found\n", id)
					return nil
				}
				if asJSON {
					return writeJSON(cmd, item)
				}
				printQueueItemDetail(cmd.OutOrStdout(), *item)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}

func printQueueItemDetail(out io.Writer, item api.QueueItem) {
	fmt.Fprintf(out, "Job #%d: %s\n", item.ID, queueItemTitle(item))
	fmt.Fprintf(out, "  %-12s %s\n", "Source:", queueItemSource(item))
	fmt.Fprintf(out, "  %-12s %s\n", "Status:", formatStatusLabel(item.Status))
	if stage := strings.TrimSpace(item.Progress.Stage); stage != "" {
		line := stage
		if item.Progress.Percent > 0 {
			line = fmt.Sprintf("%s (%.0f%%)", line, item.Progress.Percent)
		}
		if message := strings.TrimSpace(item.Progress.Message); message != "" {
			line += " - " + message
		}
		fmt.Fprintf(out, "  %-12s %s\n", "Stage:", line)
	}
	if item.DeclaredFormat != "" {
		fmt.Fprintf(out, "  %-12s %s\n", "Format:", item.DeclaredFormat)
	}
	if item.Language != "" {
		fmt.Fprintf(out, "  %-12s %s\n", "Language:", item.Language)
	}
	if item.CreatedAt != "" {
		fmt.Fprintf(out, "  %-12s %s\n", "Created:", formatDisplayTime(item.CreatedAt))
	}
	if item.UpdatedAt != "" {
		fmt.Fprintf(out, "  %-12s %s\n", "Updated:", formatDisplayTime(item.UpdatedAt))
	}
	if item.ErrorMessage != "" {
		fmt.Fprintf(out, "  %-12s %s\n", "Error:", item.ErrorMessage)
	}
	if item.Artifacts != nil {
		fmt.Fprintln(out, "  Artifacts:")
		for _, entry := range []struct{ label, path string }{
			{"txt", item.Artifacts.Text},
			{"srt", item.Artifacts.SRT},
			{"vtt", item.Artifacts.VTT},
			{"html", item.Artifacts.HTML},
		} {
			if entry.path != "" {
				fmt.Fprintf(out, "    %-5s %s\n", entry.label+":", entry.path)
			}
		}
	}
	if item.Provenance != nil {
		fmt.Fprintln(out, "  Provenance:")
		if item.Provenance.Author != "" {
			fmt.Fprintf(out, "    %-9s %s\n", "Author:", item.Provenance.Author)
		}
		if item.Provenance.URL != "" {
			fmt.Fprintf(out, "    %-9s %s\n", "URL:", item.Provenance.URL)
		}
		if item.Provenance.DurationSeconds > 0 {
			fmt.Fprintf(out, "    %-9s %s\n", "Duration:", timecode.FormatDuration(item.Provenance.DurationSeconds))
		}
	}
	if preview := strings.TrimSpace(item.Preview); preview != "" {
		fmt.Fprintln(out, "  Preview:")
		fmt.Fprintf(out, "    %s\n", preview)
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>...",
		Short: "Remove jobs from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					var removed bool
					var err error
					if client != nil {
						removed, err = client.RemoveItem(cmd.Context(), id)
					} else {
						removed, err = store.Remove(cmd.Context(), id)
					}
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Job %d removed\n", id)
					} else {
						fmt.Fprintf(out, "Job %d not found\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Reset failed jobs back to pending",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := retryAllFailed(cmd, client, store)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed jobs\n", updated)
					return nil
				}

				for _, id := range ids {
					outcome, err := retryOne(cmd, client, store, id)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, outcome)
				}
				return nil
			})
		},
	}
}

func retryAllFailed(cmd *cobra.Command, client *api.Client, store *queue.Store) (int64, error) {
	if client == nil {
		return store.RetryFailed(cmd.Context())
	}
	failed, err := client.Queue(cmd.Context(), string(queue.StatusFailed))
	if err != nil {
		return 0, err
	}
	var updated int64
	for _, item := range failed {
		count, err := client.RetryItem(cmd.Context(), item.ID)
		if err != nil {
			return updated, err
		}
		updated += count
	}
	return updated, nil
}

func retryOne(cmd *cobra.Command, client *api.Client, store *queue.Store, id int64) (string, error) {
	if client != nil {
		item, err := client.QueueItem(cmd.Context(), id)
		if err != nil {
			return "", err
		}
		if item == nil {
			return fmt.Sprintf("Job %d not found", id), nil
		}
		if item.Status != string(queue.StatusFailed) {
			return fmt.Sprintf("Job %d is not in failed state", id), nil
		}
		if _, err := client.RetryItem(cmd.Context(), id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Job %d reset for retry", id), nil
	}

	item, err := store.GetByID(cmd.Context(), id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return fmt.Sprintf("Job %d not found", id), nil
	}
	if item.Status != queue.StatusFailed {
		return fmt.Sprintf("Job %d is not in failed state", id), nil
	}
	if _, err := store.RetryFailed(cmd.Context(), id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Job %d reset for retry", id), nil
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				var removed int64
				var err error
				label := "queue jobs"
				switch {
				case clearCompleted:
					label = "completed jobs"
					if client != nil {
						removed, err = client.ClearQueue(cmd.Context(), "completed")
					} else {
						removed, err = store.ClearCompleted(cmd.Context())
					}
				case clearFailed:
					label = "failed jobs"
					if client != nil {
						removed, err = client.ClearQueue(cmd.Context(), "failed")
					} else {
						removed, err = store.ClearFailed(cmd.Context())
					}
				default:
					if client != nil {
						removed, err = client.ClearQueue(cmd.Context(), "")
					} else {
						removed, err = store.Clear(cmd.Context())
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed jobs")
	return cmd
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid job id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
