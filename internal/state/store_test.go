package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/api"
	"parley/internal/fileops"
)

// testValidator implements Validator with a fixed current schema version,
// mirroring how modes supply their schema knowledge.
type testValidator struct {
	currentVersion string
	migrateCalls   int
}

func (v *testValidator) ValidateState(record *Record) ValidationResult {
	if record.Data == nil {
		return ValidationResult{IsValid: false, Errors: []string{"data payload is missing"}}
	}
	if record.SchemaVersion != v.currentVersion {
		return ValidationResult{IsValid: true, NeedsMigration: true}
	}
	return ValidationResult{IsValid: true}
}

func (v *testValidator) MigrateState(record *Record) (*Record, error) {
	v.migrateCalls++
	record.SchemaVersion = v.currentVersion
	return record, nil
}

func newTestStore(t *testing.T, validator Validator) *Store {
	t.Helper()
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	return NewStore("discovery", "state", files, validator)
}

func TestSaveFillsMissingFields(t *testing.T) {
	store := newTestStore(t, nil)

	saved, err := store.Save(&Record{Data: map[string]interface{}{"step": 0}})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "discovery", saved.ModeID)
	assert.False(t, saved.Timestamp.IsZero())
}

func TestSaveRejectsForeignMode(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Save(&Record{ModeID: "planning", Data: map[string]interface{}{}})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestLoadRoundTrip(t *testing.T) {
	store := newTestStore(t, nil)

	original := &Record{
		ID:            "s1",
		SchemaVersion: "2",
		Data: map[string]interface{}{
			"step":   float64(3),
			"answer": "a typed answer",
		},
		Artifacts: []string{"project.md"},
	}
	_, err := store.Save(original)
	require.NoError(t, err)

	loaded, err := store.Load("s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.ModeID, loaded.ModeID)
	assert.Equal(t, original.SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, original.Data, loaded.Data)
	assert.Equal(t, original.Artifacts, loaded.Artifacts)

	// The timestamp round-trips through text serialization as a real
	// temporal value, not plain text.
	assert.True(t, original.Timestamp.Equal(loaded.Timestamp))
	assert.False(t, loaded.Timestamp.IsZero())
}

func TestLoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t, nil)

	loaded, err := store.Load("")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	loaded, err = store.Load("never-existed")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoadLatestByLexicalOrder(t *testing.T) {
	store := newTestStore(t, nil)

	for i := 1; i <= 3; i++ {
		_, err := store.Save(&Record{
			ID:   fmt.Sprintf("20260101T00000%d.000000000-aaaa", i),
			Data: map[string]interface{}{"step": float64(i)},
		})
		require.NoError(t, err)
	}

	latest, err := store.Load("")
	require.NoError(t, err)
	require.NotNil(t, latest)
	step, ok := latest.GetInt("step")
	require.True(t, ok)
	assert.Equal(t, 3, step)
}

func TestGeneratedIDsAreSortable(t *testing.T) {
	earlier := NewStateID(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	later := NewStateID(time.Date(2026, 1, 1, 10, 0, 1, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestMigrationOnLegacyRecord(t *testing.T) {
	validator := &testValidator{currentVersion: "2"}
	store := newTestStore(t, validator)

	// Legacy record: no schemaVersion at all.
	_, err := store.Save(&Record{ID: "s1", Data: map[string]interface{}{"step": float64(0)}})
	require.NoError(t, err)

	loaded, err := store.Load("s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "2", loaded.SchemaVersion)
	assert.Equal(t, 1, validator.migrateCalls)

	step, ok := loaded.GetInt("step")
	require.True(t, ok)
	assert.Equal(t, 0, step)
}

func TestMigrationNotImplicitlyPersisted(t *testing.T) {
	validator := &testValidator{currentVersion: "2"}
	store := newTestStore(t, validator)

	_, err := store.Save(&Record{ID: "s1", Data: map[string]interface{}{"step": float64(0)}})
	require.NoError(t, err)

	// First load migrates in memory only; the file on disk still has no
	// schema version, so a second load migrates again.
	_, err = store.Load("s1")
	require.NoError(t, err)
	_, err = store.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, 2, validator.migrateCalls)

	// Saving the migrated record makes it stick.
	migrated, err := store.Load("s1")
	require.NoError(t, err)
	_, err = store.Save(migrated)
	require.NoError(t, err)

	_, err = store.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, validator.migrateCalls)
}

func TestStructurallyInvalidRecordIsHardError(t *testing.T) {
	validator := &testValidator{currentVersion: "2"}
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	store := NewStore("discovery", "state", files, validator)

	// A record with no data payload at all is invalid, not migratable.
	_, err = files.Write("state/discovery/bad.json", []byte(`{"id":"bad","modeId":"discovery","timestamp":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	_, err = store.Load("bad")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, 0, validator.migrateCalls)
}

func TestMalformedJSONIsValidationError(t *testing.T) {
	files, err := fileops.New(t.TempDir())
	require.NoError(t, err)
	store := NewStore("discovery", "state", files, nil)

	_, err = files.Write("state/discovery/corrupt.json", []byte("{ this is not json"))
	require.NoError(t, err)

	_, err = store.Load("corrupt")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestClearSingle(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Save(&Record{ID: "s1", Data: map[string]interface{}{}})
	require.NoError(t, err)
	_, err = store.Save(&Record{ID: "s2", Data: map[string]interface{}{}})
	require.NoError(t, err)

	require.NoError(t, store.Clear("s1"))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, ids)

	err = store.Clear("s1")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t, nil)

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := store.Save(&Record{ID: id, Data: map[string]interface{}{}})
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear(""))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Clearing an already empty namespace is a no-op.
	require.NoError(t, store.Clear(""))
}
