package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/cli"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// can distinguish failure classes.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidationFailed indicates a mode or configuration validation failure.
	ExitCodeValidationFailed = 2
)

// commonFlags holds the persistent flags shared by every subcommand.
var commonFlags cli.CommonFlags

// rootCmd represents the base command for the parley application.
var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Run stateful interactive modes with durable file-backed state",
	Long: `parley is a runtime for pluggable, stateful interactive modes: guided
multi-turn conversations whose progress is persisted crash-safe to a
file-backed store under a runtime root directory.

Built-in modes capture project fundamentals (discovery) and turn them
into an ordered task list (planning), producing a project.md document.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors the application already reports.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commonFlags.Validate()
	},
}

func init() {
	commonFlags.Register(rootCmd)
}

// SetVersion sets the version for the root command, injected at build time
// by the main package.
func SetVersion(v string) {
	rootCmd.Version = v
}

// newApplication composes the runtime from the persistent flags.
func newApplication(overrides ...func(*app.Config)) (*app.Application, error) {
	cfg := &app.Config{
		Root:   commonFlags.Root,
		Format: commonFlags.Format,
		Quiet:  commonFlags.Quiet,
		Debug:  commonFlags.Debug,
	}
	for _, o := range overrides {
		o(cfg)
	}

	a, err := app.NewApplication(cfg)
	if err != nil {
		if errors.Is(err, app.ErrConfigLoad) {
			return nil, fmt.Errorf("%w (run \"parley config recover\" to reset the configuration)", err)
		}
		return nil, err
	}
	return a, nil
}

// Execute is the main entry point for the CLI application, called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "parley version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error classes to semantic exit codes.
func getExitCode(err error) int {
	if errors.Is(err, cli.ErrValidationFailed) {
		return ExitCodeValidationFailed
	}
	return ExitCodeError
}
