package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/daemonctl"
	"quill/internal/daemonrun"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Control the quill background daemon",
	}

	var startLogLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quill daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			cfg := ctx.configValue()
			result, err := daemonctl.EnsureStarted(
				cmd.Context(),
				cfg.Paths.APIBind,
				exe,
				daemonLaunchOptions(ctx, startLogLevel),
				10*time.Second,
			)
			if err != nil {
				return err
			}
			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "", "Log level for the launched daemon (debug, info, warn, error)")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the quill daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(cmd.Context(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon process is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			cfg := ctx.configValue()
			running, pid, err := daemonctl.ProcessInfo(cmd.Context(), cfg.Paths.APIBind)
			if err != nil {
				return err
			}
			if running {
				fmt.Fprintf(stdout, "Daemon running (pid %d)\n", pid)
			} else {
				fmt.Fprintln(stdout, "Daemon is not running")
			}
			fmt.Fprintf(stdout, "PID file:  %s\n", daemonctl.PIDFilePath(cfg))
			fmt.Fprintf(stdout, "Lock file: %s\n", daemonctl.LockFilePath(cfg))
			return nil
		},
	}

	var runLogLevel string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: runLogLevel})
		},
	}
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	daemonCmd.AddCommand(startCmd, stopCmd, statusCmd, runCmd)
	return daemonCmd
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext, logLevel string) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{LogLevel: strings.TrimSpace(logLevel)}
	if ctx.configFlag != nil {
		if path := strings.TrimSpace(*ctx.configFlag); path != "" {
			opts.ConfigPath = path
		}
	}
	return opts
}
