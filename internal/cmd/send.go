package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bouldertools/sisyphus/internal/bridge"
)

var sendCmd = &cobra.Command{
	Use:     "send <name> <keys...>",
	GroupID: GroupSessions,
	Short:   "Send keys to a session",
	Long: `Send forwards keys to a running session. Recognized key names (Enter,
Tab, Escape, Up, Down, C-c, ...) are sent as keys; anything else is
sent as literal text.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	name, err := sessionName(args)
	if err != nil {
		return err
	}
	keys := strings.Join(args[1:], " ")
	if keys == "" {
		return bridge.ErrEmptyKeys
	}

	b, err := newBridge()
	if err != nil {
		return err
	}
	return b.Send(name, keys)
}
