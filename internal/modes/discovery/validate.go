package discovery

import (
	"fmt"

	"parley/internal/state"
)

// ValidateState checks a deserialized record against the current schema.
// Untagged legacy records and version 1 records are valid but need
// migration; records written by a newer schema are a hard error.
func (m *Mode) ValidateState(record *state.Record) state.ValidationResult {
	if record.Data == nil {
		return state.ValidationResult{IsValid: false, Errors: []string{"data payload is missing"}}
	}

	var errs []string
	if raw, ok := record.Data["step"]; ok {
		if _, isNumber := raw.(float64); !isNumber {
			if _, isInt := raw.(int); !isInt {
				errs = append(errs, fmt.Sprintf("step must be a number, got %T", raw))
			}
		}
	}
	if raw, ok := record.Data["answers"]; ok {
		if _, isMap := raw.(map[string]interface{}); !isMap {
			errs = append(errs, fmt.Sprintf("answers must be a mapping, got %T", raw))
		}
	}
	if len(errs) > 0 {
		return state.ValidationResult{IsValid: false, Errors: errs}
	}

	switch record.SchemaVersion {
	case SchemaVersion:
		return state.ValidationResult{IsValid: true}
	case "", "1":
		return state.ValidationResult{IsValid: true, NeedsMigration: true}
	default:
		return state.ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("record schema %q is newer than supported version %s", record.SchemaVersion, SchemaVersion)},
		}
	}
}

// MigrateState brings a version 1 or untagged record to the current shape:
// answers stored as top-level keys beside "step" move under the "answers"
// mapping. The step index is preserved as is.
func (m *Mode) MigrateState(record *state.Record) (*state.Record, error) {
	answers, _ := record.Data["answers"].(map[string]interface{})
	if answers == nil {
		answers = map[string]interface{}{}
	}

	for key, value := range record.Data {
		if key == "step" || key == "answers" {
			continue
		}
		if _, taken := answers[key]; !taken {
			answers[key] = value
		}
		delete(record.Data, key)
	}

	record.Data["answers"] = answers
	record.SchemaVersion = SchemaVersion
	return record, nil
}
