package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var screenshotOut string

var screenshotCmd = &cobra.Command{
	Use:     "screenshot <name>",
	GroupID: GroupSessions,
	Short:   "Render a session's screen to an image file",
	Long: `Screenshot captures the session's screen with colors preserved and
renders it through textimg. Without --out the image lands in the logs
directory under a timestamped name.`,
	RunE: runScreenshot,
}

func init() {
	screenshotCmd.Flags().StringVarP(&screenshotOut, "out", "o", "", "Output image path")
	rootCmd.AddCommand(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	name, err := sessionName(args)
	if err != nil {
		return err
	}
	b, err := newBridge()
	if err != nil {
		return err
	}
	path, err := b.Screenshot(name, screenshotOut)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
