// Package cmd provides CLI commands for the sisyphus tool.
package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bouldertools/sisyphus/internal/bridge"
	"github.com/bouldertools/sisyphus/internal/config"
	"github.com/bouldertools/sisyphus/internal/tmux"
)

// Version is the sisyphus release version.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "sisyphus",
	Short:   "Sisyphus - crash-tolerant agent supervisor and terminal session bridge",
	Version: Version,
	Long: `Sisyphus keeps a crash-prone autonomous agent rolling: it reruns the
agent across iterations until the shared mission log contains the
completion marker, resuming the agent's session where possible.

It also bridges named terminal sessions so agents (and tests) can drive
and observe interactive terminal applications.`,
	SilenceUsage: true,
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Errors are printed by cobra; every failure class exits 1.
		return 1
	}
	return 0
}

// Command group IDs - used by subcommands to organize help output
const (
	GroupLoop     = "loop"
	GroupSessions = "sessions"
	GroupDiag     = "diag"
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLoop, Title: "Supervisor Loop:"},
		&cobra.Group{ID: GroupSessions, Title: "Terminal Sessions:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)

	rootCmd.SetHelpCommandGroupID(GroupDiag)
	rootCmd.SetCompletionCommandGroupID(GroupDiag)
}

// sessionName extracts and validates the session name argument. Session
// commands other than list, wait, and check-deps require one.
func sessionName(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("session name required")
	}
	return args[0], nil
}

// newBridge builds a Bridge over the configured logs directory.
func newBridge() (*bridge.Bridge, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return bridge.New(tmux.NewTmux(), cfg.LogsPath()), nil
}
