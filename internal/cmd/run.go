package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bouldertools/sisyphus/internal/config"
	"github.com/bouldertools/sisyphus/internal/notify"
	"github.com/bouldertools/sisyphus/internal/supervisor"
	"github.com/bouldertools/sisyphus/internal/worker"
)

var (
	runWorkDir       string
	runModel         string
	runMaxIterations int
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: GroupLoop,
	Short:   "Run the supervisor loop until the mission completes",
	Long: `Run invokes the agent repeatedly until the completion marker appears
in the shared mission log. Iteration 1 sends the full mission
instruction from the mission file; later iterations send a generic
resume instruction, threading in the previous invocation's session so
the agent keeps its context.

An interrupt or terminate signal cancels the in-flight agent call and
shuts the whole loop down; there is no partial-iteration recovery.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runWorkDir, "workdir", "w", "", "Working directory the agent is confined to")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model passed to the agent CLI")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Stop after N iterations (0 = unlimited)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runWorkDir)
	if err != nil {
		return err
	}
	if runModel != "" {
		cfg.Model = runModel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner := worker.NewRunner(cfg.AgentBin, cfg.Model, cfg.WorkDir)
	notifier := notify.New(cfg.WebhookURL)

	sup := supervisor.New(cfg, runner, notifier, logger)
	sup.MaxIterations = runMaxIterations

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sup.Run(ctx)
}
