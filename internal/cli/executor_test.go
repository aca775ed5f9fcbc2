package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/app"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	a, err := app.NewApplication(&app.Config{Root: t.TempDir(), Quiet: true})
	require.NoError(t, err)
	return NewExecutor(a, true)
}

func TestRunTurn(t *testing.T) {
	e := newTestExecutor(t)

	require.NoError(t, e.RunTurn(context.Background(), "", ""))
	require.NoError(t, e.RunTurn(context.Background(), "discovery", "answers the first question"))
}

func TestRunTurnUnknownMode(t *testing.T) {
	e := newTestExecutor(t)

	err := e.RunTurn(context.Background(), "nonsense", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExecutionFailed)
}

func TestValidateAllModes(t *testing.T) {
	e := newTestExecutor(t)

	require.NoError(t, e.Validate(context.Background(), ""))
}

func TestValidateUnknownMode(t *testing.T) {
	e := newTestExecutor(t)

	err := e.Validate(context.Background(), "nonsense")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)
}
