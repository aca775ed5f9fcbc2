package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/state"
)

var stateMode string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and manage stored mode state",
}

// newInspectionStore builds a raw state store for the named mode. No
// validator is attached: inspection commands show records as persisted,
// without triggering migration.
func newInspectionStore() (*state.Store, *app.Application, error) {
	a, err := newApplication()
	if err != nil {
		return nil, nil, err
	}
	if stateMode == "" {
		return nil, nil, fmt.Errorf("--mode is required")
	}
	if !a.Registry().Has(stateMode) {
		return nil, nil, fmt.Errorf("mode %s is not registered", stateMode)
	}

	merged, err := a.ConfigManager().Get()
	if err != nil {
		return nil, nil, err
	}
	return state.NewStore(stateMode, merged.Paths.StateDir, a.Files(), nil), a, nil
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored state records for a mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, a, err := newInspectionStore()
		if err != nil {
			return err
		}

		ids, err := store.List()
		if err != nil {
			return err
		}

		records := make([]*state.Record, 0, len(ids))
		for _, id := range ids {
			record, err := store.Load(id)
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return a.Formatter().StateList(records)
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear [state-id]",
	Short: "Delete one state record, or all records of a mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := newInspectionStore()
		if err != nil {
			return err
		}

		stateID := ""
		if len(args) == 1 {
			stateID = args[0]
		}
		if err := store.Clear(stateID); err != nil {
			return err
		}

		if stateID == "" {
			fmt.Printf("Cleared all state for mode %s\n", stateMode)
		} else {
			fmt.Printf("Cleared state %s\n", stateID)
		}
		return nil
	},
}

func init() {
	stateCmd.PersistentFlags().StringVarP(&stateMode, "mode", "m", "", "mode whose state to manage")
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
