package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bouldertools/sisyphus/internal/deps"
	"github.com/bouldertools/sisyphus/internal/ui"
)

var checkDepsCmd = &cobra.Command{
	Use:     "check-deps",
	GroupID: GroupDiag,
	Short:   "Check availability of tmux, the screenshot renderer, and its font",
	Long: `Check-deps reports each external dependency's status. All checks run
even when an earlier one fails; the exit code is 1 if anything is
missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := deps.RunAll()
		for _, r := range results {
			icon := ui.RenderPassIcon()
			if r.Status != deps.StatusOK {
				icon = ui.RenderFailIcon()
			}
			fmt.Printf("%s %-12s %s\n", icon, r.Name, r.Message)
		}
		if deps.AnyMissing(results) {
			return errors.New("missing dependencies")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkDepsCmd)
}
