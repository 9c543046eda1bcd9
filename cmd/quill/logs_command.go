package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lineCount int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			lines, err := client.Logs(cmd.Context(), lineCount)
			if api.IsDaemonUnavailable(err) {
				cfg := ctx.configValue()
				lines, err = logs.Tail(filepath.Join(cfg.Paths.LogDir, "quilld.log"), lineCount)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				fmt.Fprintln(out, "No log entries available")
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lineCount, "lines", "n", 200, "Number of trailing log lines to show")
	return cmd
}
