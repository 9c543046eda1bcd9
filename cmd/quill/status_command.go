package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := daemonctl.StatusSnapshot(cmd.Context(), ctx.configValue())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonLines(status, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(status.Dependencies, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Workflow Stages", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range stageLines(status.Workflow.StageHealth, colorize) {
				fmt.Fprintln(stdout, line)
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Queue Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := buildQueueStatusRows(status.Workflow.QueueStats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "Queue is empty")
				return nil
			}
			table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprint(stdout, table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}

func daemonLines(status api.DaemonStatus, colorize bool) []string {
	lines := make([]string, 0, 6)
	if status.Running {
		lines = append(lines, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusInfo, "Not running", colorize))
	}
	if status.Workflow.Running {
		lines = append(lines, renderStatusLine("Workflow", statusOK, "Processing queue", colorize))
	} else {
		lines = append(lines, renderStatusLine("Workflow", statusInfo, "Idle", colorize))
	}
	if lastErr := strings.TrimSpace(status.Workflow.LastError); lastErr != "" {
		lines = append(lines, renderStatusLine("Last error", statusWarn, lastErr, colorize))
	}
	if status.QueueDBPath != "" {
		lines = append(lines, renderStatusLine("Queue database", statusInfo, status.QueueDBPath, colorize))
	}
	if status.LockFilePath != "" {
		lines = append(lines, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
	}
	if status.LogPath != "" {
		lines = append(lines, renderStatusLine("Log file", statusInfo, status.LogPath, colorize))
	}
	return lines
}

func dependencyLines(deps []api.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	missing := make([]string, 0)
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func stageLines(stages []api.StageHealth, colorize bool) []string {
	if len(stages) == 0 {
		return []string{renderStatusLine("Stages", statusInfo, "No stage health reported", colorize)}
	}
	lines := make([]string, 0, len(stages))
	for _, stage := range stages {
		if stage.Ready {
			lines = append(lines, renderStatusLine(stage.Name, statusOK, "Ready", colorize))
			continue
		}
		detail := strings.TrimSpace(stage.Detail)
		if detail == "" {
			detail = "not ready"
		}
		lines = append(lines, renderStatusLine(stage.Name, statusWarn, detail, colorize))
	}
	return lines
}
