package cli

import (
	"fmt"

	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/spf13/cobra"
)

// newLifecycleCommand builds "start" or "stop". Both wait for the engine to
// accept the request and exit non-zero when it does not.
func (a *app) newLifecycleCommand(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <container-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeEngine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			id := args[0]
			if domain.CommandKind(use) == domain.CommandStart {
				err = engine.Start(cmd.Context(), id)
			} else {
				err = engine.Stop(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s requested for %s\n", use, domain.ShortID(id))
			return err
		},
	}
}
