package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/ingest"
	"quill/internal/queue"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Queue a local media file for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			if !ingest.AllowedMediaFile(absPath) {
				return fmt.Errorf("unsupported media extension %q; supported: %s",
					filepath.Ext(absPath), strings.Join(ingest.MediaExtensions(), ", "))
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				var id int64
				if client != nil {
					item, err := client.SubmitJob(cmd.Context(), api.SubmitJobRequest{
						Kind:  api.JobKindFile,
						Path:  absPath,
						Title: title,
					})
					if err != nil {
						return err
					}
					id = item.ID
				} else {
					item, err := store.NewFileJob(cmd.Context(), absPath, title)
					if err != nil {
						return err
					}
					id = item.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued media file as job #%d (%s)\n", id, filepath.Base(absPath))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title for the job (defaults to the file name)")
	return cmd
}
