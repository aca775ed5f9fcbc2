package cmd

import (
	"github.com/spf13/cobra"

	"parley/internal/cli"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the registered modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		return a.Formatter().ModeList(a.Registry().Descriptors())
	},
}

var validateMode string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate registered modes and their stored state",
	Long: `Checks every registered mode (or one, with --mode): registry-level
findings such as disabled modes and missing dependencies, plus each
mode's own consistency checks. Exits non-zero when any report is
invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		return cli.NewExecutor(a, commonFlags.Quiet).Validate(cmd.Context(), validateMode)
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateMode, "mode", "m", "", "validate only this mode")
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(validateCmd)
}
