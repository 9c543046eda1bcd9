package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/queue"
	"quill/internal/services/ytdlp"
)

func newYoutubeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "youtube <url>",
		Short: "Queue a video URL for caption fetch or transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			if !ytdlp.IsVideoURL(url) {
				return fmt.Errorf("unsupported video URL %q", url)
			}

			return ctx.withQueue(cmd.Context(), func(client *api.Client, store *queue.Store) error {
				var id int64
				if client != nil {
					item, err := client.SubmitJob(cmd.Context(), api.SubmitJobRequest{
						Kind: api.JobKindURL,
						URL:  url,
					})
					if err != nil {
						return err
					}
					id = item.ID
				} else {
					item, err := store.NewURLJob(cmd.Context(), url)
					if err != nil {
						return err
					}
					id = item.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued video URL as job #%d\n", id)
				return nil
			})
		},
	}
}
