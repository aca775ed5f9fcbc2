package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is a single persisted snapshot of a mode's conversation progress.
type Record struct {
	// ID is unique within the owning mode's namespace. Identifiers
	// generated by the store are lexically sortable by creation time.
	ID string `json:"id"`

	// ModeID is the owning mode's identifier.
	ModeID string `json:"modeId"`

	// Timestamp is the creation or last-write instant.
	Timestamp time.Time `json:"timestamp"`

	// SchemaVersion tags the shape of Data at write time. Absent on
	// legacy records, which is a migration signal, not an error.
	SchemaVersion string `json:"schemaVersion,omitempty"`

	// Data is the mode-private payload. Each mode owns its keys
	// exclusively; the store never interprets them.
	Data map[string]interface{} `json:"data"`

	// Artifacts lists references to artifacts produced while in this
	// state, in production order.
	Artifacts []string `json:"artifacts,omitempty"`
}

// ValidationResult is returned by a mode's state validator. Validity and
// migration are independent axes: a record can be old-but-valid (migration
// only) or structurally invalid (hard error).
type ValidationResult struct {
	IsValid        bool     `json:"isValid"`
	Errors         []string `json:"errors,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	NeedsMigration bool     `json:"needsMigration"`
}

// Validator supplies the mode-specific schema knowledge the store needs
// when loading records.
type Validator interface {
	// ValidateState inspects a deserialized record against the mode's
	// current schema version.
	ValidateState(record *Record) ValidationResult

	// MigrateState transforms an old-shaped record to the current shape.
	// It is only called when ValidateState reported NeedsMigration.
	MigrateState(record *Record) (*Record, error)
}

// NewStateID generates a monotonically sortable state identifier: a
// zero-padded UTC timestamp plus a short random token for uniqueness within
// the same nanosecond.
func NewStateID(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102T150405.000000000"), uuid.NewString()[:8])
}

// GetString returns a string value from the record's payload.
func (r *Record) GetString(key string) (string, bool) {
	v, ok := r.Data[key].(string)
	return v, ok
}

// GetInt returns an integer value from the record's payload, accepting the
// float64 representation JSON deserialization produces.
func (r *Record) GetInt(key string) (int, bool) {
	switch v := r.Data[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Set stores a value in the record's payload, allocating the map on first
// use.
func (r *Record) Set(key string, value interface{}) {
	if r.Data == nil {
		r.Data = make(map[string]interface{})
	}
	r.Data[key] = value
}
