package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/config"
	"parley/internal/fileops"
	"parley/internal/formatting"
	"parley/internal/mode"
	"parley/internal/modes/discovery"
	"parley/internal/modes/planning"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)

	registry := mode.NewRegistry(files, config.NewManager(files))
	require.NoError(t, registry.Register(discovery.Descriptor()))
	require.NoError(t, registry.Register(planning.Descriptor()))
	registry.Freeze()

	var buf bytes.Buffer
	formatter := formatting.New(formatting.Options{Format: formatting.FormatTable, Output: &buf, Quiet: true})
	r, err := New(registry, discovery.ModeID, formatter, Options{Quiet: true, Output: &buf})
	require.NoError(t, err)
	return r, &buf
}

func TestHistoryFileLocation(t *testing.T) {
	r, _ := newTestREPL(t)

	// Without an explicit location the history lands in the system temp
	// directory.
	assert.Equal(t, filepath.Join(os.TempDir(), ".parley_history"), r.historyFile())

	r.options.HistoryFile = filepath.Join(t.TempDir(), ".parley_history")
	assert.Equal(t, r.options.HistoryFile, r.historyFile())
}

func TestUnknownStartingMode(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	registry := mode.NewRegistry(files, config.NewManager(files))

	_, err = New(registry, "nonsense", formatting.New(formatting.Options{}), Options{})
	require.Error(t, err)
}

func TestConversationTurn(t *testing.T) {
	r, buf := newTestREPL(t)

	quit, err := r.handleLine(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, buf.String(), "problem")
}

func TestQuitCommand(t *testing.T) {
	r, _ := newTestREPL(t)

	quit, err := r.handleLine(context.Background(), "/quit")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = r.handleLine(context.Background(), "/exit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestUnknownCommand(t *testing.T) {
	r, _ := newTestREPL(t)

	quit, err := r.handleLine(context.Background(), "/frobnicate")
	require.Error(t, err)
	assert.False(t, quit)
	assert.Contains(t, err.Error(), "/help")
}

func TestModesListing(t *testing.T) {
	r, buf := newTestREPL(t)

	_, err := r.handleLine(context.Background(), "/modes")
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "discovery")
	assert.Contains(t, out, "planning")
}

func TestModeSwitchCleansUpCurrent(t *testing.T) {
	r, buf := newTestREPL(t)
	ctx := context.Background()

	// Start a conversation so discovery is initialized.
	_, err := r.handleLine(ctx, "")
	require.NoError(t, err)

	_, err = r.handleLine(ctx, "/mode planning")
	require.NoError(t, err)
	assert.Equal(t, "planning", r.ActiveMode())
	assert.Contains(t, buf.String(), "Switched to mode planning")

	// Switching to the active mode is a no-op.
	_, err = r.handleLine(ctx, "/mode planning")
	require.NoError(t, err)

	_, err = r.handleLine(ctx, "/mode nonsense")
	require.Error(t, err)
	assert.Equal(t, "planning", r.ActiveMode())
}

func TestStateCommandsBeforeInitialization(t *testing.T) {
	r, buf := newTestREPL(t)
	ctx := context.Background()

	for _, cmd := range []string{"/state", "/save", "/clear"} {
		buf.Reset()
		_, err := r.handleLine(ctx, cmd)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "not initialized")
	}
}

func TestSaveAndClearState(t *testing.T) {
	r, buf := newTestREPL(t)
	ctx := context.Background()

	_, err := r.handleLine(ctx, "")
	require.NoError(t, err)

	buf.Reset()
	_, err = r.handleLine(ctx, "/save")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Saved state")

	buf.Reset()
	_, err = r.handleLine(ctx, "/state")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "discovery")

	buf.Reset()
	_, err = r.handleLine(ctx, "/clear")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Cleared all state for mode discovery")
}

func TestValidateCommand(t *testing.T) {
	r, buf := newTestREPL(t)

	_, err := r.handleLine(context.Background(), "/validate")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "discovery: valid")
}
