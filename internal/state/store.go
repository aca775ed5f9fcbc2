package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"parley/internal/api"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

const subsystem = "StateStore"

// Store persists state records for exactly one mode. All physical I/O goes
// through the file primitives; the store only owns the mapping from
// (modeID, stateID) to a relative path.
type Store struct {
	modeID    string
	stateDir  string
	files     *fileops.FileOps
	validator Validator
}

// NewStore creates a state store for the given mode. validator supplies the
// mode's schema validation and migration logic; it may be nil for modes
// without versioned payloads, in which case records are handed back as
// deserialized.
func NewStore(modeID, stateDir string, files *fileops.FileOps, validator Validator) *Store {
	return &Store{
		modeID:    modeID,
		stateDir:  stateDir,
		files:     files,
		validator: validator,
	}
}

// ModeID returns the identifier of the mode this store belongs to.
func (s *Store) ModeID() string {
	return s.modeID
}

// recordPath maps a state id to its namespace-relative file path.
func (s *Store) recordPath(stateID string) string {
	return filepath.Join(s.stateDir, s.modeID, stateID+".json")
}

// Save fills in any missing ID and Timestamp fields, serializes the record,
// and writes it atomically. The stored record is returned.
func (s *Store) Save(record *Record) (*Record, error) {
	if record == nil {
		return nil, api.NewValidationError(s.modeID, "cannot save a nil state record")
	}

	now := time.Now()
	if record.ID == "" {
		record.ID = NewStateID(now)
	}
	if record.ModeID == "" {
		record.ModeID = s.modeID
	}
	if record.ModeID != s.modeID {
		return nil, api.NewValidationError(record.ID, "record belongs to mode %s, not %s", record.ModeID, s.modeID)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = now.UTC()
	}

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state %s for mode %s: %w", record.ID, s.modeID, err)
	}

	if _, err := s.files.Write(s.recordPath(record.ID), raw); err != nil {
		return nil, fmt.Errorf("failed to persist state %s for mode %s: %w", record.ID, s.modeID, err)
	}

	logging.Info(subsystem, "Saved state %s for mode %s", record.ID, s.modeID)
	return record, nil
}

// Load retrieves one state record. With an empty stateID it selects the
// lexically greatest filename in the mode's namespace. A missing record is
// a legitimate empty result: Load returns nil, nil.
//
// Loaded records pass through the mode-supplied validator; structurally
// invalid records are a hard error, while records needing migration are
// transformed before being returned. The migrated record is not
// re-persisted; call Save to make the migration stick.
func (s *Store) Load(stateID string) (*Record, error) {
	if stateID == "" {
		latest, err := s.latestID()
		if err != nil {
			return nil, err
		}
		if latest == "" {
			logging.Debug(subsystem, "No state for mode %s yet", s.modeID)
			return nil, nil
		}
		stateID = latest
	}

	content, _, err := s.files.Read(s.recordPath(stateID))
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state %s for mode %s: %w", stateID, s.modeID, err)
	}

	var record Record
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, api.NewValidationError(stateID, "state record is not valid JSON: %v", err)
	}

	return s.validateAndMigrate(&record)
}

// validateAndMigrate applies the mode's validator to a deserialized record,
// keeping validation errors and migration signals strictly apart.
func (s *Store) validateAndMigrate(record *Record) (*Record, error) {
	if s.validator == nil {
		return record, nil
	}

	result := s.validator.ValidateState(record)
	for _, warning := range result.Warnings {
		logging.Warn(subsystem, "State %s for mode %s: %s", record.ID, s.modeID, warning)
	}

	if !result.IsValid {
		return nil, api.NewValidationError(record.ID, "state record is structurally invalid: %s", strings.Join(result.Errors, "; "))
	}

	if result.NeedsMigration {
		logging.Info(subsystem, "Migrating state %s for mode %s from schema %q", record.ID, s.modeID, record.SchemaVersion)
		migrated, err := s.validator.MigrateState(record)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate state %s for mode %s: %w", record.ID, s.modeID, err)
		}
		return migrated, nil
	}

	return record, nil
}

// List returns the identifiers of every record in the mode's namespace in
// lexical order.
func (s *Store) List() ([]string, error) {
	metas, err := s.files.List(filepath.Join(s.stateDir, s.modeID), fileops.ListOptions{Pattern: "*.json"})
	if err != nil {
		return nil, fmt.Errorf("failed to list states for mode %s: %w", s.modeID, err)
	}

	ids := make([]string, 0, len(metas))
	for _, meta := range metas {
		ids = append(ids, strings.TrimSuffix(filepath.Base(meta.Path), ".json"))
	}
	return ids, nil
}

// latestID returns the lexically greatest state id, or "" when none exist.
func (s *Store) latestID() (string, error) {
	ids, err := s.List()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[len(ids)-1], nil
}

// Clear deletes one record by id, or every record in the mode's namespace
// when stateID is empty. Clearing an id that does not exist fails with a
// NotFoundError; clearing an empty namespace is a no-op.
func (s *Store) Clear(stateID string) error {
	if stateID != "" {
		if err := s.files.Delete(s.recordPath(stateID)); err != nil {
			return fmt.Errorf("failed to clear state %s for mode %s: %w", stateID, s.modeID, err)
		}
		logging.Info(subsystem, "Cleared state %s for mode %s", stateID, s.modeID)
		return nil
	}

	ids, err := s.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.files.Delete(s.recordPath(id)); err != nil {
			return fmt.Errorf("failed to clear state %s for mode %s: %w", id, s.modeID, err)
		}
	}

	logging.Info(subsystem, "Cleared all %d states for mode %s", len(ids), s.modeID)
	return nil
}
