package mode

import (
	"context"

	"parley/internal/config"
	"parley/internal/fileops"
	"parley/internal/state"
)

// Deps bundles the runtime dependencies a mode receives from its
// controller. The controller owns the struct; modes must not retain it past
// the call they receive it in, except for the duration of their initialized
// lifetime.
type Deps struct {
	// Files provides confined, atomic file primitives rooted at the
	// runtime root.
	Files *fileops.FileOps

	// Config resolves the layered runtime configuration.
	Config *config.Manager

	// Store is the state store bound to this mode's namespace. It is nil
	// until the controller has initialized the mode.
	Store *state.Store

	// Prompts holds the mode's prompt template overrides loaded during
	// initialization. Nil until initialized.
	Prompts *PromptSet
}

// Mode is the contract every pluggable mode implements. The controller
// drives the Do* hooks in a fixed lifecycle order; modes never call each
// other's hooks directly.
//
// Embedding state.Validator makes each mode the authority on its own state
// schema: the controller wires the mode into its state store, so records
// are validated and migrated with the mode's knowledge on every load.
type Mode interface {
	state.Validator

	// ID returns the unique mode identifier, used as the state and prompt
	// namespace.
	ID() string

	// Description returns a one-line human-readable summary.
	Description() string

	// SchemaVersion returns the current version of the mode's state
	// schema. Stored records with older versions are migrated on load.
	SchemaVersion() string

	// DoInitialize prepares the mode for execution. Called exactly once
	// per initialization by the controller; deps is fully populated.
	DoInitialize(ctx context.Context, deps *Deps) error

	// DoExecute processes one turn of input and returns the result
	// payload. Errors are captured by the controller into a failure
	// result rather than propagated.
	DoExecute(ctx context.Context, input string, deps *Deps) (*Output, error)

	// DoValidate checks the mode's own consistency. It may be called
	// before initialization, in which case deps.Store and deps.Prompts
	// are nil.
	DoValidate(ctx context.Context, deps *Deps) *Report

	// DoCleanup releases mode resources. After a successful cleanup the
	// controller is back in the uninitialized phase.
	DoCleanup(ctx context.Context, deps *Deps) error
}
