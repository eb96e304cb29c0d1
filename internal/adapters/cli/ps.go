package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/spf13/cobra"
)

func (a *app) newPsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List all containers once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeEngine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			if err := engine.Refresh(cmd.Context()); err != nil {
				return err
			}

			snap := engine.Snapshot()
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Containers)
			}
			_, err = fmt.Fprintln(out, renderTable(snap))
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the list as JSON")
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(snap *domain.Snapshot) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CONTAINER ID", "NAME", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, c := range snap.Containers {
		t.Row(c.ShortID, c.Name, c.Status.String())
	}
	return t.String()
}
