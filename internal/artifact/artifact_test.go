package artifact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/api"
	"parley/internal/fileops"
)

func sampleDocument() *Document {
	doc := &Document{
		Meta: Frontmatter{
			ID:          "proj-1",
			Stage:       StageDiscovery,
			Confidence:  0.6,
			LastUpdated: "2026-08-01T12:00:00Z",
		},
	}
	doc.AppendSection("Problem", "Users lose track of project context between sessions.")
	doc.AppendSection("Audience", "Small product teams.")
	return doc
}

func TestRenderParseRoundTrip(t *testing.T) {
	doc := sampleDocument()

	rendered, err := Render(doc)
	require.NoError(t, err)

	parsed, err := Parse(rendered)
	require.NoError(t, err)
	assert.Equal(t, doc.Meta, parsed.Meta)
	assert.Equal(t, doc.Body, parsed.Body)
}

func TestAppendSectionLayout(t *testing.T) {
	doc := &Document{}
	doc.AppendSection("Problem", "First.")
	doc.AppendSection("Audience", "Second.")

	assert.Equal(t, "## Problem\n\nFirst.\n\n## Audience\n\nSecond.\n", doc.Body)
}

func TestParseBodyOnlyDocument(t *testing.T) {
	parsed, err := Parse([]byte("# Notes\n\nJust markdown, no header.\n"))
	require.NoError(t, err)
	assert.Empty(t, parsed.Meta.ID)
	assert.Contains(t, parsed.Body, "Just markdown")
}

func TestParseUnterminatedFrontmatter(t *testing.T) {
	_, err := Parse([]byte("---\nid: proj-1\nno closing fence\n"))
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestParseMalformedFrontmatter(t *testing.T) {
	_, err := Parse([]byte("---\n{not yaml: [\n---\n\nbody\n"))
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestTouch(t *testing.T) {
	doc := &Document{}
	doc.Touch(time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-27T09:30:00Z", doc.Meta.LastUpdated)
}

func TestStoreRoundTrip(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	store := NewStore(files, "project.md", false)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	doc := sampleDocument()
	require.NoError(t, store.Save(doc))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, doc.Meta, loaded.Meta)
	assert.Equal(t, doc.Body, loaded.Body)
}

func TestStoreBackupOnOverwrite(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	store := NewStore(files, "project.md", true)

	first := sampleDocument()
	require.NoError(t, store.Save(first))

	second := sampleDocument()
	second.Meta.Stage = StagePlanning
	require.NoError(t, store.Save(second))

	backups, err := files.List("backups", fileops.ListOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}
