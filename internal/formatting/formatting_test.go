package formatting

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/config"
	"parley/internal/mode"
	"parley/internal/state"
)

func newBufferFormatter(format OutputFormat) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Options{Format: format, Output: &buf, Quiet: true}), &buf
}

func sampleDescriptors() []mode.Descriptor {
	return []mode.Descriptor{
		{ID: "discovery", Description: "question sequence", LoadPriority: 10, Enabled: true},
		{ID: "planning", Description: "task list", Dependencies: []string{"discovery"}, LoadPriority: 20, Enabled: false},
	}
}

func TestValidateOutputFormat(t *testing.T) {
	assert.NoError(t, ValidateOutputFormat("table"))
	assert.NoError(t, ValidateOutputFormat("json"))
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestModeListTable(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	require.NoError(t, f.ModeList(sampleDescriptors()))
	out := buf.String()
	assert.Contains(t, out, "MODE")
	assert.Contains(t, out, "discovery")
	assert.Contains(t, out, "planning")
	assert.Contains(t, out, "question sequence")
}

func TestModeListJSON(t *testing.T) {
	f, buf := newBufferFormatter(FormatJSON)

	require.NoError(t, f.ModeList(sampleDescriptors()))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "discovery", rows[0]["id"])
	assert.Equal(t, true, rows[0]["enabled"])
	assert.Equal(t, []interface{}{"discovery"}, rows[1]["dependencies"])
}

func TestStateListEmpty(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	require.NoError(t, f.StateList(nil))
	assert.Contains(t, buf.String(), "No stored state")
}

func TestStateListShowsLegacySchema(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	records := []*state.Record{
		{ID: "s1", ModeID: "discovery", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "s2", ModeID: "discovery", SchemaVersion: "2", Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, f.StateList(records))
	out := buf.String()
	assert.Contains(t, out, "legacy")
	assert.Contains(t, out, "2026-01-02T00:00:00Z")
}

func TestReportRendering(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	report := &mode.Report{
		Valid:    false,
		Errors:   []string{"mode planning has missing dependencies: discovery"},
		Warnings: []string{"no project document yet"},
	}
	require.NoError(t, f.Report("planning", report))
	out := buf.String()
	assert.Contains(t, out, "planning: invalid")
	assert.Contains(t, out, "error: mode planning has missing dependencies")
	assert.Contains(t, out, "warning: no project document yet")
}

func TestResultRendering(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	result := &mode.Result{
		Success: true,
		Data:    "What problem is this project solving?",
		Metadata: &mode.ResultMetadata{
			ExecutionTime: 12 * time.Millisecond,
			Warnings:      []string{"failed to auto-save state"},
		},
	}
	require.NoError(t, f.Result(result))
	out := buf.String()
	assert.Contains(t, out, "What problem is this project solving?")
	assert.Contains(t, out, "warning: failed to auto-save state")
	// Quiet mode suppresses the timing line.
	assert.NotContains(t, out, "(12ms)")
}

func TestResultTimingShownWhenNotQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Output: &buf})

	result := &mode.Result{Success: true, Data: "ok", Metadata: &mode.ResultMetadata{ExecutionTime: 12 * time.Millisecond}}
	require.NoError(t, f.Result(result))
	assert.Contains(t, buf.String(), "(12ms)")
}

func TestFailureResultRendering(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	require.NoError(t, f.Result(&mode.Result{Success: false, Error: "turn exploded"}))
	assert.Contains(t, buf.String(), "error: turn exploded")
}

func TestRecoveryRendering(t *testing.T) {
	f, buf := newBufferFormatter(FormatTable)

	require.NoError(t, f.Recovery(&config.RecoveryResult{Valid: true}))
	assert.Contains(t, buf.String(), "Configuration is valid")

	buf.Reset()
	require.NoError(t, f.Recovery(&config.RecoveryResult{
		Valid:     true,
		Recovered: true,
		Errors:    []string{"defaultMode must be one of discovery, planning"},
	}))
	out := buf.String()
	assert.Contains(t, out, "reset to defaults")
	assert.Contains(t, out, "defaultMode must be one of")
}
