// Package commands holds maintenance subcommands added to the PocketBase CLI.
package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"buildledger/services"
)

// NewRecalcCommand returns the "recalc" command, which recomputes every
// cached estimate and schedule of values total and prints what changed.
func NewRecalcCommand(app core.App) *cobra.Command {
	var changedOnly bool

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute cached estimate and SOV totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := services.RecalculateAll(app)
			if err != nil {
				return fmt.Errorf("recalc: %w", err)
			}
			renderRecalcReport(cmd.OutOrStdout(), entries, changedOnly)
			return nil
		},
	}

	cmd.Flags().BoolVar(&changedOnly, "changed-only", false, "list only totals that changed")
	return cmd
}

func renderRecalcReport(w io.Writer, entries []services.RecalcEntry, changedOnly bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Kind", "ID", "Label", "Before", "After", "Changed"})

	changed := 0
	for _, e := range entries {
		if e.Changed {
			changed++
		} else if changedOnly {
			continue
		}
		mark := ""
		if e.Changed {
			mark = "yes"
		}
		t.AppendRow(table.Row{
			e.Kind,
			e.ID,
			e.Label,
			services.FormatUSD(services.Dec(e.Before)),
			services.FormatUSD(services.Dec(e.After)),
			mark,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d checked", len(entries)), fmt.Sprintf("%d changed", changed)})
	t.Render()
}
