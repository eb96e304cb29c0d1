// Package cli builds the deck command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/melih/lighthouse-deck/internal/adapters/docker"
	"github.com/melih/lighthouse-deck/internal/config"
	"github.com/melih/lighthouse-deck/internal/core/ports"
	"github.com/melih/lighthouse-deck/internal/core/services/syncer"
	"github.com/melih/lighthouse-deck/internal/logger"
	"github.com/spf13/cobra"
)

// RuntimeFactory opens the container runtime for one command invocation.
type RuntimeFactory func(cfg *config.Config) (ports.ContainerRuntime, io.Closer, error)

// DockerRuntime connects to the local default Docker engine.
func DockerRuntime(cfg *config.Config) (ports.ContainerRuntime, io.Closer, error) {
	adapter, err := docker.NewAdapter(docker.WithStopGracePeriod(cfg.Engine.StopGracePeriod.Std()))
	if err != nil {
		return nil, nil, err
	}
	return adapter, adapter, nil
}

type app struct {
	newRuntime RuntimeFactory
	cfg        *config.Config

	configPath   string
	logLevel     string
	logFormat    string
	pollInterval time.Duration
}

// NewRootCommand creates the deck command. A nil factory means DockerRuntime.
func NewRootCommand(newRuntime RuntimeFactory) *cobra.Command {
	if newRuntime == nil {
		newRuntime = DockerRuntime
	}
	a := &app{newRuntime: newRuntime}

	rootCmd := &cobra.Command{
		Use:   "deck",
		Short: "Watch and control local containers",
		Long: `deck keeps a live list of every container on the local engine and lets
you start or stop them. Without a subcommand it opens the interactive table.

The engine is found the same way the docker CLI finds it (DOCKER_HOST,
otherwise the platform default socket or pipe).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runWatch,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/lighthouse-deck/config.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.DurationVar(&a.pollInterval, "interval", 0, "Poll interval (default from config, 1s)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		a.newWatchCommand(),
		a.newServeCommand(),
		a.newPsCommand(),
		a.newLifecycleCommand("start", "Start a stopped container"),
		a.newLifecycleCommand("stop", "Stop a running container (10s grace period by default)"),
		a.newConfigCommand(),
	)
	return rootCmd
}

// setup loads the config file and applies flag overrides.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if cmd.Annotations[configOptional] != "true" || !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("interval") {
		cfg.Sync.PollInterval = config.Duration(a.pollInterval)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.SetLevel(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	a.cfg = cfg
	return nil
}

// newEngine opens the runtime and wraps it in a sync engine. The returned
// func closes both.
func (a *app) newEngine() (*syncer.Engine, func(), error) {
	rt, closer, err := a.newRuntime(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open container runtime: %w", err)
	}

	engine := syncer.New(rt,
		syncer.WithPollInterval(a.cfg.Sync.PollInterval.Std()),
		syncer.WithRefreshTimeout(a.cfg.Sync.RefreshTimeout.Std()),
		syncer.WithCommandTimeout(a.cfg.Sync.CommandTimeout.Std()),
	)
	return engine, func() {
		engine.Close()
		if closer != nil {
			_ = closer.Close()
		}
	}, nil
}
