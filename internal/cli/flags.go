package cli

import (
	"github.com/spf13/cobra"

	"parley/internal/formatting"
)

// CommonFlags holds the flags shared by every command that composes the
// runtime.
type CommonFlags struct {
	// Root is the runtime root directory.
	Root string

	// Format is the output format (table, json).
	Format string

	// Quiet suppresses spinners, timing, and info logging.
	Quiet bool

	// Debug raises the log level to debug.
	Debug bool
}

// Register adds the common flags to a command.
func (f *CommonFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.Root, "root", ".", "runtime root directory")
	cmd.PersistentFlags().StringVarP(&f.Format, "output", "o", "table", "output format (table, json)")
	cmd.PersistentFlags().BoolVarP(&f.Quiet, "quiet", "q", false, "suppress progress indicators and timing")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "enable debug logging")
}

// Validate checks flag values that have an enumerated domain.
func (f *CommonFlags) Validate() error {
	return formatting.ValidateOutputFormat(f.Format)
}
