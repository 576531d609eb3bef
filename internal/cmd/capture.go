package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:     "capture <name>",
	GroupID: GroupSessions,
	Short:   "Print a session's screen as plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		out, err := b.Capture(name)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var captureANSICmd = &cobra.Command{
	Use:     "capture-ansi <name>",
	GroupID: GroupSessions,
	Short:   "Print a session's screen with colors and attributes preserved",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := sessionName(args)
		if err != nil {
			return err
		}
		b, err := newBridge()
		if err != nil {
			return err
		}
		out, err := b.CaptureANSI(name)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(captureANSICmd)
}
