package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/melih/lighthouse-deck/internal/adapters/http"
	"github.com/melih/lighthouse-deck/internal/logger"
	"github.com/spf13/cobra"
)

func (a *app) newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the container list and start/stop over HTTP",
		Long: `serve polls the engine in the background and exposes the latest
snapshot at GET /api/v1/containers. Start and stop requests are accepted
with 202 and carried out asynchronously; their effect appears in a later
snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "Listen address")
	return cmd
}

func (a *app) runServe(parent context.Context) error {
	engine, closeEngine, err := a.newEngine()
	if err != nil {
		return err
	}
	defer closeEngine()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("poller stopped")
		}
	}()

	logger.WithField("addr", a.cfg.Server.Addr).Info("Server starting")
	err = http.Serve(ctx, http.NewApp(engine), a.cfg.Server.Addr)
	stop()
	<-pollerDone
	return err
}
