package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/queue"
)

// daemonProbeTimeout bounds the liveness check that decides between the
// daemon API and direct store access.
const daemonProbeTimeout = 2 * time.Second

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// apiClient builds a daemon API client from the configured bind address
// without probing for liveness.
func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cfg.Paths.APIBind)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("api bind address is not configured")
	}
	return client, nil
}

// withQueue routes queue operations through the daemon API when it answers a
// health probe, and opens the store directly otherwise. Exactly one of
// client/store is non-nil inside fn.
func (c *commandContext) withQueue(ctx context.Context, fn func(client *api.Client, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.Paths.APIBind)
	if err == nil && client != nil {
		probeCtx, cancel := context.WithTimeout(ctx, daemonProbeTimeout)
		err = client.Health(probeCtx)
		cancel()
		if err == nil {
			return fn(client, nil)
		}
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(nil, store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
