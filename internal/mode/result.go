package mode

import (
	"fmt"
	"time"
)

// ResultMetadata carries cross-cutting measurements attached to every
// execution result, success or failure.
type ResultMetadata struct {
	// ExecutionTime is the elapsed wall-clock time of the call.
	ExecutionTime time.Duration `json:"executionTime"`

	// Warnings collects non-fatal observations from the execution.
	Warnings []string `json:"warnings,omitempty"`
}

// Result is the sole value returned across the controller boundary to any
// driving CLI or UI.
type Result struct {
	Success  bool            `json:"success"`
	Data     interface{}     `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata *ResultMetadata `json:"metadata,omitempty"`
}

// Output is what a mode's execution hook returns on success: the result
// payload plus any warnings to surface in the result metadata.
type Output struct {
	// Data is the result payload. For conversational modes this is
	// typically the reply string; modes may return richer structures.
	Data interface{}

	// Warnings are attached to the result metadata.
	Warnings []string
}

// DataAs recovers a typed payload from a result. It fails when the result
// is unsuccessful or the payload has a different type.
func DataAs[T any](r *Result) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("no result")
	}
	if !r.Success {
		return zero, fmt.Errorf("execution failed: %s", r.Error)
	}
	v, ok := r.Data.(T)
	if !ok {
		return zero, fmt.Errorf("result payload is %T, not %T", r.Data, zero)
	}
	return v, nil
}

// Report is returned by Validate. Controller-level checks (disabled mode,
// missing dependencies) and the mode's own validation logic both contribute;
// their errors and warnings are merged.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
