package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:     "wait <seconds>",
	GroupID: GroupSessions,
	Short:   "Block for the given number of seconds",
	Long: `Wait sleeps for the given duration. Agents driving sessions use it to
give the terminal application time to react between send and capture.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil || secs < 0 {
			return fmt.Errorf("invalid duration %q", args[0])
		}
		select {
		case <-time.After(time.Duration(secs * float64(time.Second))):
			return nil
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
}
