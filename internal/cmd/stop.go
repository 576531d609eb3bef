package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:     "stop <name>",
	GroupID: GroupSessions,
	Short:   "Stop a session and archive its log",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		if err := b.Stop(name); err != nil {
			return err
		}
		fmt.Printf("stopped session %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
