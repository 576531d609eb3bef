package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cursorCmd = &cobra.Command{
	Use:     "cursor <name>",
	GroupID: GroupSessions,
	Short:   "Print a session's cursor position as x,y",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		pos, err := b.Cursor(name)
		if err != nil {
			return err
		}
		fmt.Println(pos)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:     "inspect <name>",
	GroupID: GroupSessions,
	Short:   "Print cursor position followed by the plain-text screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		out, err := b.Inspect(name)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cursorCmd)
	rootCmd.AddCommand(inspectCmd)
}
