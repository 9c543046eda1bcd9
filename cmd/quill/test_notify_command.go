package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			resp, err := client.TestNotification(cmd.Context())
			if api.IsDaemonUnavailable(err) {
				return errors.New("daemon is not running (start it with 'quill daemon start')")
			}
			if err != nil {
				if resp.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				}
				return err
			}
			switch {
			case resp.Message != "":
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			case resp.Sent:
				fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
			}
			return nil
		},
	}
}
