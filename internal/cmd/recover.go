package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:     "recover <name>",
	GroupID: GroupSessions,
	Short:   "Print the tail of a session's most recent interrupted log",
	Long: `Recover looks up the newest INTERRUPTED archive for the name and
prints its trailing lines, so an agent can see what a crashed session
was doing. Having no interrupted logs is not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		out, err := b.Recover(name)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
