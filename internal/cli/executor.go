// Package cli provides the execution layer for non-interactive commands:
// it runs single runtime operations with a progress spinner and renders
// their results through the shared formatter.
package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/briandowns/spinner"

	"parley/internal/app"
)

// Sentinel errors used by commands to derive exit codes. The detail has
// already been rendered when these are returned; they only signal failure.
var (
	// ErrExecutionFailed indicates the conversation turn produced a
	// failure result.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrValidationFailed indicates at least one mode validation report
	// was invalid.
	ErrValidationFailed = errors.New("validation failed")
)

// Executor runs one-shot operations against a composed application.
type Executor struct {
	app   *app.Application
	quiet bool
}

// NewExecutor creates an executor. quiet suppresses the progress spinner.
func NewExecutor(a *app.Application, quiet bool) *Executor {
	return &Executor{app: a, quiet: quiet}
}

// withSpinner runs fn behind a progress spinner unless quiet mode is on.
func (e *Executor) withSpinner(message string, fn func() error) error {
	if e.quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()
	return fn()
}

// RunTurn executes one conversation turn and renders the result. A failure
// result returns ErrExecutionFailed after rendering, so callers can exit
// non-zero without reporting the error twice.
func (e *Executor) RunTurn(ctx context.Context, modeID, input string) error {
	var turnErr error
	err := e.withSpinner("Thinking...", func() error {
		r, execErr := e.app.ExecuteTurn(ctx, modeID, input)
		if execErr != nil {
			return execErr
		}
		if renderErr := e.app.Formatter().Result(r); renderErr != nil {
			return renderErr
		}
		if !r.Success {
			turnErr = ErrExecutionFailed
		}
		return nil
	})
	if err != nil {
		return err
	}
	return turnErr
}

// Validate renders the validation reports of one mode, or of every
// registered mode when modeID is empty, and returns ErrValidationFailed if
// any report is invalid.
func (e *Executor) Validate(ctx context.Context, modeID string) error {
	reports, err := e.app.Validate(ctx, modeID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	failed := false
	for _, id := range ids {
		if err := e.app.Formatter().Report(id, reports[id]); err != nil {
			return err
		}
		if !reports[id].Valid {
			failed = true
		}
	}
	if failed {
		return ErrValidationFailed
	}
	return nil
}
