package mode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/api"
	"parley/internal/config"
	"parley/internal/fileops"
)

func writePrompts(t *testing.T, files *fileops.FileOps, modeID, content string) {
	t.Helper()
	_, err := files.Write(filepath.Join("modes", modeID, PromptsFile), []byte(content))
	require.NoError(t, err)
}

func TestLoadPromptSetMissingFileIsEmpty(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)

	set, err := LoadPromptSet(files, "modes", "discovery")
	require.NoError(t, err)
	assert.Empty(t, set.Names())
	assert.False(t, set.Has("greeting"))
}

func TestRenderOverrideWithSprigFunctions(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	writePrompts(t, files, "discovery", `{"greeting": "HELLO {{ .name | upper }}"}`)

	set, err := LoadPromptSet(files, "modes", "discovery")
	require.NoError(t, err)

	out, err := set.Render("greeting", map[string]interface{}{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO ADA", out)
}

func TestRenderUnknownPrompt(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)

	set, err := LoadPromptSet(files, "modes", "discovery")
	require.NoError(t, err)

	_, err = set.Render("greeting", nil)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestRenderOrPrefersOverride(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	writePrompts(t, files, "discovery", `{"greeting": "custom {{ .name }}"}`)

	set, err := LoadPromptSet(files, "modes", "discovery")
	require.NoError(t, err)

	data := map[string]interface{}{"name": "ada"}
	assert.Equal(t, "custom ada", set.RenderOr("greeting", "default {{ .name }}", data))
	assert.Equal(t, "default ada", set.RenderOr("farewell", "default {{ .name }}", data))
}

func TestRenderOrBrokenOverrideFallsBack(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	writePrompts(t, files, "discovery", `{"greeting": "broken {{ .name"}`)

	set, err := LoadPromptSet(files, "modes", "discovery")
	require.NoError(t, err)

	out := set.RenderOr("greeting", "default {{ .name }}", map[string]interface{}{"name": "ada"})
	assert.Equal(t, "default ada", out)
}

func TestMalformedPromptsFileFailsInitialization(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	r := NewRegistry(files, config.NewManager(files))
	m := &fakeMode{id: "discovery"}
	registerFake(t, r, m)

	writePrompts(t, files, "discovery", `["not", "a", "mapping"]`)

	c, err := r.Get("discovery")
	require.NoError(t, err)

	err = c.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.False(t, c.Initialized())
}

func TestInitializeLoadsOverridesIntoDeps(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	r := NewRegistry(files, config.NewManager(files))
	m := &fakeMode{id: "discovery"}
	registerFake(t, r, m)

	writePrompts(t, files, "discovery", `{"greeting": "hi {{ .name }}"}`)

	c, err := r.Get("discovery")
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))

	require.NotNil(t, m.deps)
	require.NotNil(t, m.deps.Prompts)
	assert.Equal(t, []string{"greeting"}, m.deps.Prompts.Names())
	require.NotNil(t, m.deps.Store)
	assert.Equal(t, "discovery", m.deps.Store.ModeID())
}
