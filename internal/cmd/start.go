package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	startWidth  int
	startHeight int
)

var startCmd = &cobra.Command{
	Use:     "start <name> <command...>",
	GroupID: GroupSessions,
	Short:   "Start a named terminal session running a command",
	Long: `Start creates a detached terminal session and opens a fresh
interaction log for it. If a stale log from a previous unclean exit is
found, it is archived with an INTERRUPTED tag first. Starting over a
name that is already running is an error.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVar(&startWidth, "width", 0, "Session width in columns (default 200)")
	startCmd.Flags().IntVar(&startHeight, "height", 0, "Session height in rows (default 50)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	name, err := sessionName(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("command required")
	}
	command := strings.Join(args[1:], " ")

	b, err := newBridge()
	if err != nil {
		return err
	}
	if err := b.Start(name, command, startWidth, startHeight); err != nil {
		return err
	}
	fmt.Printf("started session %s\n", name)
	return nil
}
