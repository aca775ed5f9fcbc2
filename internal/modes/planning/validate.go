package planning

import (
	"fmt"

	"parley/internal/state"
)

// ValidateState checks a deserialized record against the current schema.
func (m *Mode) ValidateState(record *state.Record) state.ValidationResult {
	if record.Data == nil {
		return state.ValidationResult{IsValid: false, Errors: []string{"data payload is missing"}}
	}

	if raw, ok := record.Data["tasks"]; ok {
		if _, isList := raw.([]interface{}); !isList {
			return state.ValidationResult{
				IsValid: false,
				Errors:  []string{fmt.Sprintf("tasks must be a list, got %T", raw)},
			}
		}
	}

	switch record.SchemaVersion {
	case SchemaVersion:
		return state.ValidationResult{IsValid: true}
	case "":
		return state.ValidationResult{IsValid: true, NeedsMigration: true}
	default:
		return state.ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("record schema %q is newer than supported version %s", record.SchemaVersion, SchemaVersion)},
		}
	}
}

// MigrateState tags an untagged legacy record and makes sure the task list
// exists.
func (m *Mode) MigrateState(record *state.Record) (*state.Record, error) {
	if _, ok := record.Data["tasks"].([]interface{}); !ok {
		record.Data["tasks"] = []interface{}{}
	}
	record.SchemaVersion = SchemaVersion
	return record, nil
}
