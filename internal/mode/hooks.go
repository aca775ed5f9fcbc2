package mode

import (
	"context"
	"fmt"
	"sync"

	"parley/pkg/logging"
)

// HookType identifies the point in the execution flow a hook is attached to.
type HookType string

// Hook attachment points.
const (
	// HookBeforeExecute runs before the mode's execution hook. An error
	// aborts the turn with a failure result.
	HookBeforeExecute HookType = "before_execute"

	// HookAfterExecute runs after a successful execution, with the result
	// populated. An error converts the turn into a failure result.
	HookAfterExecute HookType = "after_execute"

	// HookOnError runs whenever a turn fails, for observation only. Its
	// own errors are logged and otherwise ignored.
	HookOnError HookType = "on_error"
)

// HookContext carries the turn's data into hooks. Fields are populated as
// the turn progresses: Result only exists for after-execute hooks, Err only
// for on-error hooks.
type HookContext struct {
	ModeID string
	Input  string
	Result *Result
	Err    error
}

// Hook observes or vetoes one point of the execution flow.
type Hook func(ctx context.Context, hc *HookContext) error

// hookSet stores registered hooks per attachment point. Registration and
// execution are safe for concurrent use.
type hookSet struct {
	mu    sync.RWMutex
	hooks map[HookType][]Hook
}

func newHookSet() *hookSet {
	return &hookSet{hooks: make(map[HookType][]Hook)}
}

func (h *hookSet) register(t HookType, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks[t] = append(h.hooks[t], hook)
}

// run invokes the hooks for t in registration order and stops at the first
// error. on-error hooks are never allowed to fail the caller.
func (h *hookSet) run(ctx context.Context, t HookType, hc *HookContext) error {
	h.mu.RLock()
	hooks := h.hooks[t]
	h.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(ctx, hc); err != nil {
			if t == HookOnError {
				logging.Warn("ModeController", "on_error hook %d for mode %s failed: %v", i, hc.ModeID, err)
				continue
			}
			return fmt.Errorf("%s hook %d for mode %s failed: %w", t, i, hc.ModeID, err)
		}
	}
	return nil
}
