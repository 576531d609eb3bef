package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bouldertools/sisyphus/internal/bridge"
	"github.com/bouldertools/sisyphus/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: GroupSessions,
	Short:   "List sessions and their status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBridge()
		if err != nil {
			return err
		}
		records, err := b.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println(ui.RenderMuted("no active sessions"))
			return nil
		}
		fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("%-24s %s", "NAME", "STATUS")))
		for _, r := range records {
			status := string(r.Status)
			if r.Status == bridge.StatusInterrupted {
				status = ui.RenderWarnIcon() + " " + status
			}
			fmt.Printf("%-24s %s\n", r.Name, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
