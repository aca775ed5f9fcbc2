package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetCaches(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	first, err := m.Get()
	require.NoError(t, err)
	second, err := m.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManagerReload(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	cfg, err := m.Get()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)

	writeFile(t, files, UserConfigFile, `{"logging": {"level": "debug"}}`)

	reloaded, err := m.Reload()
	require.NoError(t, err)
	assert.Equal(t, "debug", reloaded.Logging.Level)

	cached, err := m.Get()
	require.NoError(t, err)
	assert.Same(t, reloaded, cached)
}

func TestManagerSaveRoundTrip(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "error"
	require.NoError(t, m.Save(&cfg))
	assert.NotEmpty(t, cfg.UpdatedAt)

	fresh := NewManager(files)
	loaded, err := fresh.Get()
	require.NoError(t, err)
	assert.Equal(t, "error", loaded.Logging.Level)
}

func TestManagerSaveRejectsInvalid(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	cfg := GetDefaultConfig()
	cfg.DefaultMode = "nonsense"
	err := m.Save(&cfg)
	require.Error(t, err)
	assert.False(t, files.Exists(UserConfigFile))
}

func TestManagerUpdatePersistsImmediately(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	updated, err := m.Update(map[string]interface{}{
		"preferences": map[string]interface{}{"colorOutput": false},
	})
	require.NoError(t, err)
	assert.False(t, updated.Preferences.ColorOutput)
	// Sibling preference survives the deep merge.
	assert.True(t, updated.Preferences.AutoSaveState)

	// The update is on disk, not just in the cache.
	fresh := NewManager(files)
	loaded, err := fresh.Get()
	require.NoError(t, err)
	assert.False(t, loaded.Preferences.ColorOutput)
}

func TestValidateAndRecoverHealthy(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	result, err := m.ValidateAndRecover()
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.Recovered)
	assert.Empty(t, result.Errors)
}

func TestValidateAndRecoverFromParseError(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	writeFile(t, files, UserConfigFile, "{{{ definitely not json")

	result, err := m.ValidateAndRecover()
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Recovered)
	assert.NotEmpty(t, result.Errors)

	// The persisted configuration is usable again.
	cfg, err := m.Reload()
	require.NoError(t, err)
	assert.Equal(t, DefaultModeID, cfg.DefaultMode)
}

func TestValidateAndRecoverQuarantinesCorruptBaseLayer(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	writeFile(t, files, BaseConfigFile, "logging: [unclosed\n  nonsense: {")

	result, err := m.ValidateAndRecover()
	require.NoError(t, err)
	assert.True(t, result.Recovered)
	require.NotEmpty(t, result.Errors)

	// The corrupt file is out of the load path but preserved for
	// inspection.
	assert.False(t, files.Exists(BaseConfigFile))
	assert.True(t, files.Exists(BaseConfigFile+".bak"))

	// A fresh manager, like the next process start, loads cleanly.
	cfg, err := NewManager(files).Get()
	require.NoError(t, err)
	assert.Equal(t, DefaultModeID, cfg.DefaultMode)
}

func TestValidateAndRecoverKeepsParseableBaseLayer(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	// The base layer is fine; only the user layer is corrupt.
	writeFile(t, files, BaseConfigFile, "logging:\n  level: debug\n")
	writeFile(t, files, UserConfigFile, "{{{ definitely not json")

	result, err := m.ValidateAndRecover()
	require.NoError(t, err)
	assert.True(t, result.Recovered)
	assert.True(t, files.Exists(BaseConfigFile))
	assert.False(t, files.Exists(BaseConfigFile+".bak"))
}

func TestValidateAndRecoverFromValidationError(t *testing.T) {
	files := newTestFiles(t)
	m := NewManager(files)

	writeFile(t, files, UserConfigFile, `{"defaultMode": "ghost", "version": ""}`)

	result, err := m.ValidateAndRecover()
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Recovered)
	require.NotEmpty(t, result.Errors)

	// Individual violations are reported, not one opaque blob.
	joined := ""
	for _, e := range result.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "defaultMode")
	assert.Contains(t, joined, "version")
}
