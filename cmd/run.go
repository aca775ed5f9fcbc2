package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/cli"
)

var (
	runMode  string
	runInput string
	runWatch bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive session, or execute a single turn",
	Long: `Without --input, run starts the interactive session: a readline loop
driving the selected mode, with slash commands for state management.

With --input, run executes exactly one conversation turn and exits,
which is what scripts and editor integrations want.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(func(cfg *app.Config) {
			cfg.ModeID = runMode
			cfg.WatchConfig = runWatch
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runInput != "" {
			return cli.NewExecutor(a, commonFlags.Quiet).RunTurn(ctx, runMode, runInput)
		}
		return a.Run(ctx)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "mode to run (defaults to the configured default mode)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "execute a single turn with this input and exit")
	runCmd.Flags().BoolVar(&runWatch, "watch-config", false, "auto-reload configuration on file changes")
	rootCmd.AddCommand(runCmd)
}
