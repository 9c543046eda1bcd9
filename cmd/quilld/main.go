// Command quilld runs the quill daemon in the foreground: the workflow
// manager, the HTTP control API, and log/pid bookkeeping. It is the
// entrypoint for service managers; interactive use normally goes through
// `quill daemon start` instead.
package main

import (
	"context"
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("quilld: %v", err)
	}
}
