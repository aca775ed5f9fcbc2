package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"parley/internal/config"
	"parley/internal/fileops"
	"parley/internal/formatting"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect, update, and recover the runtime configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}

		merged, err := a.ConfigManager().Get()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(merged)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value and persist it",
	Long: `Sets a configuration value by dot-separated key path and persists the
result immediately, e.g.:

  parley config set logging.level debug
  parley config set preferences.autoSaveState false

Values parse as JSON when possible (booleans, numbers), falling back to
plain strings.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}

		partial, err := partialFromPath(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := a.ConfigManager().Update(partial); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Validate the configuration, resetting it to defaults if corrupt",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The normal bootstrap fails closed on a corrupt configuration,
		// which is exactly the situation this command exists for. Wire
		// the manager directly instead.
		files, err := fileops.New(commonFlags.Root)
		if err != nil {
			return err
		}

		result, err := config.NewManager(files).ValidateAndRecover()
		if err != nil {
			return err
		}

		formatter := formatting.New(formatting.Options{
			Format: formatting.OutputFormat(commonFlags.Format),
			Quiet:  commonFlags.Quiet,
		})
		return formatter.Recovery(result)
	},
}

// partialFromPath builds the nested partial configuration for a
// dot-separated key path. The value parses as JSON when possible so
// booleans and numbers keep their types.
func partialFromPath(path, raw string) (map[string]interface{}, error) {
	keys := strings.Split(path, ".")
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("invalid configuration key path %q", path)
		}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}

	partial := map[string]interface{}{keys[len(keys)-1]: value}
	for i := len(keys) - 2; i >= 0; i-- {
		partial = map[string]interface{}{keys[i]: partial}
	}
	return partial, nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configRecoverCmd)
	rootCmd.AddCommand(configCmd)
}
