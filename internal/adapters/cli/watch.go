package cli

import (
	"context"
	"io"
	"time"

	"github.com/melih/lighthouse-deck/internal/adapters/tui"
	"github.com/melih/lighthouse-deck/internal/logger"
	"github.com/spf13/cobra"
)

const pingTimeout = 3 * time.Second

func (a *app) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive container table (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runWatch,
	}
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	// The table owns the terminal, so logs go to a file.
	if a.cfg.Log.File == "" {
		logger.SetOutput(io.Discard)
	} else {
		closer, err := logger.ToFile(a.cfg.Log.File)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	engine, closeEngine, err := a.newEngine()
	if err != nil {
		return err
	}
	defer closeEngine()

	ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
	if err := engine.Ping(ctx); err != nil {
		logger.WithError(err).Warn("container engine not reachable yet, will keep polling")
	}
	cancel()

	logger.WithField("interval", a.cfg.Sync.PollInterval.Std()).Info("starting interactive shell")
	return tui.Run(engine, a.cfg.Sync.PollInterval.Std())
}
