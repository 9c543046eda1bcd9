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
	"quill/internal/transcript"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var text string
	var format string
	var title string

	cmd := &cobra.Command{
		Use:   "convert [transcript-file]",
		Short: "Re-render an existing transcript into all output formats",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var absPath string
			if len(args) == 1 {
				resolved, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				info, err := os.Stat(resolved)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("file does not exist: %s", resolved)
					}
					return fmt.Errorf("inspect file: %w", err)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", resolved)
				}
				if !ingest.AllowedTranscriptFile(resolved) {
					return fmt.Errorf("unsupported transcript extension %q; supported: %s",
						filepath.Ext(resolved), strings.Join(ingest.TranscriptExtensions(), ", "))
				}
				absPath = resolved
			}
			if absPath == "" && strings.TrimSpace(text) == "" {
				return errors.New("provide a transcript file or --text")
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				var id int64
				if client != nil {
					item, err := client.SubmitJob(cmd.Context(), api.SubmitJobRequest{
						Kind:   api.JobKindTranscript,
						Path:   absPath,
						Text:   text,
						Title:  title,
						Format: format,
					})
					if err != nil {
						return err
					}
					id = item.ID
				} else {
					body := text
					declared := strings.TrimSpace(format)
					if absPath != "" {
						if body == "" {
							data, err := os.ReadFile(absPath)
							if err != nil {
								return fmt.Errorf("read transcript file: %w", err)
							}
							body = string(data)
						}
						if declared == "" {
							declared = strings.TrimPrefix(filepath.Ext(absPath), ".")
						}
					}
					if declared == "" {
						declared = string(transcript.FormatPlainText)
					}
					if _, err := transcript.ParseFormat(declared); err != nil {
						return err
					}
					item, err := store.NewTranscriptJob(cmd.Context(), title, absPath, body, declared)
					if err != nil {
						return err
					}
					id = item.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued transcript as job #%d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Inline transcript text instead of a file")
	cmd.Flags().StringVar(&format, "format", "", "Transcript format (txt, srt, vtt); inferred from the file extension when omitted")
	cmd.Flags().StringVar(&title, "title", "", "Display title for the job")
	return cmd
}
