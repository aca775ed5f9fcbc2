package mode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"parley/internal/api"
	"parley/internal/config"
	"parley/internal/state"
	"parley/pkg/logging"
)

const subsystem = "ModeController"

// Controller drives one mode through its lifecycle. It is constructed by
// the registry, exactly once per mode identifier, and is safe for
// concurrent use; lifecycle transitions are serialized.
type Controller struct {
	mu         sync.Mutex
	registry   *Registry
	descriptor Descriptor
	mode       Mode
	deps       *Deps
	hooks      *hookSet

	initialized bool
}

func newController(r *Registry, d Descriptor) *Controller {
	return &Controller{
		registry:   r,
		descriptor: d,
		mode:       d.New(),
		hooks:      newHookSet(),
		deps: &Deps{
			Files:  r.files,
			Config: r.config,
		},
	}
}

// ID returns the controlled mode's identifier.
func (c *Controller) ID() string {
	return c.descriptor.ID
}

// Descriptor returns the registration metadata of the controlled mode.
func (c *Controller) Descriptor() Descriptor {
	return c.descriptor
}

// Mode exposes the underlying mode instance, mainly for tests and for
// callers that need mode-specific accessors.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Initialized reports whether the controller is in the initialized phase.
func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Store returns the mode's state store, or nil before initialization.
func (c *Controller) Store() *state.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps.Store
}

// RegisterHook attaches a hook to the given execution point.
func (c *Controller) RegisterHook(t HookType, h Hook) {
	c.hooks.register(t, h)
}

// Initialize moves the controller into the initialized phase: it checks
// declared dependencies, creates the mode's private directories, loads
// prompt overrides, and runs the mode's initialization hook. The internal
// flag flips only after the hook succeeds, so a failed initialization
// leaves the controller re-enterable. Initializing an already initialized
// controller is a no-op.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initializeLocked(ctx)
}

func (c *Controller) initializeLocked(ctx context.Context) error {
	id := c.descriptor.ID
	if c.initialized {
		logging.Debug(subsystem, "Mode %s is already initialized", id)
		return nil
	}

	if !c.descriptor.Enabled {
		return api.NewModeDisabledError(id)
	}
	if missing := c.registry.MissingDependencies(id); len(missing) > 0 {
		return api.NewDependencyMissingError(id, missing)
	}

	cfg, err := c.deps.Config.Get()
	if err != nil {
		return fmt.Errorf("failed to resolve configuration for mode %s: %w", id, err)
	}

	for _, dir := range []string{
		filepath.Join(cfg.Paths.StateDir, id),
		filepath.Join(cfg.Paths.ModesDir, id),
	} {
		if err := c.deps.Files.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create directory for mode %s: %w", id, err)
		}
	}

	prompts, err := LoadPromptSet(c.deps.Files, cfg.Paths.ModesDir, id)
	if err != nil {
		return fmt.Errorf("failed to load prompt overrides for mode %s: %w", id, err)
	}

	c.deps.Store = state.NewStore(id, cfg.Paths.StateDir, c.deps.Files, c.mode)
	c.deps.Prompts = prompts

	if err := c.mode.DoInitialize(ctx, c.deps); err != nil {
		c.deps.Store = nil
		c.deps.Prompts = nil
		return fmt.Errorf("failed to initialize mode %s: %w", id, err)
	}

	c.initialized = true
	logging.Info(subsystem, "Mode %s initialized", id)
	return nil
}

// ExecuteWithResult processes one turn of input. The controller lazily
// initializes when needed, runs before/after hooks around the mode's
// execution hook, and measures the elapsed time. Errors from any stage are
// captured into a failure result; this method never returns nil and never
// panics the driving loop with an error.
func (c *Controller) ExecuteWithResult(ctx context.Context, input string) *Result {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.descriptor.ID
	hc := &HookContext{ModeID: id, Input: input}

	fail := func(err error) *Result {
		logging.Error(subsystem, err, "Mode %s turn failed", id)
		hc.Err = err
		// Observation only; run errors are swallowed inside.
		_ = c.hooks.run(ctx, HookOnError, hc)
		return &Result{
			Success:  false,
			Error:    err.Error(),
			Metadata: &ResultMetadata{ExecutionTime: time.Since(start)},
		}
	}

	if !c.initialized {
		if err := c.initializeLocked(ctx); err != nil {
			return fail(err)
		}
	}

	if err := c.hooks.run(ctx, HookBeforeExecute, hc); err != nil {
		return fail(err)
	}

	out, err := c.mode.DoExecute(ctx, input, c.deps)
	if err != nil {
		return fail(err)
	}

	result := &Result{
		Success:  true,
		Metadata: &ResultMetadata{ExecutionTime: time.Since(start)},
	}
	if out != nil {
		result.Data = out.Data
		result.Metadata.Warnings = out.Warnings
	}

	hc.Result = result
	if err := c.hooks.run(ctx, HookAfterExecute, hc); err != nil {
		return fail(err)
	}

	result.Metadata.ExecutionTime = time.Since(start)
	return result
}

// Execute is the string convenience over ExecuteWithResult: it returns the
// payload as text on success and the captured error otherwise.
func (c *Controller) Execute(ctx context.Context, input string) (string, error) {
	result := c.ExecuteWithResult(ctx, input)
	if !result.Success {
		return "", errors.New(result.Error)
	}

	switch data := result.Data.(type) {
	case nil:
		return "", nil
	case string:
		return data, nil
	default:
		return fmt.Sprintf("%v", data), nil
	}
}

// Validate checks the mode without throwing. Controller-level findings
// (disabled mode, missing dependencies) and the mode's own validation
// report are merged; errors invalidate the report, warnings do not.
func (c *Controller) Validate(ctx context.Context) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.descriptor.ID
	report := &Report{Valid: true}

	if !c.descriptor.Enabled {
		report.Valid = false
		report.Errors = append(report.Errors, api.NewModeDisabledError(id).Error())
	}
	if missing := c.registry.MissingDependencies(id); len(missing) > 0 {
		report.Valid = false
		report.Errors = append(report.Errors, api.NewDependencyMissingError(id, missing).Error())
	}

	if modeReport := c.mode.DoValidate(ctx, c.deps); modeReport != nil {
		if !modeReport.Valid {
			report.Valid = false
		}
		report.Errors = append(report.Errors, modeReport.Errors...)
		report.Warnings = append(report.Warnings, modeReport.Warnings...)
	}

	return report
}

// Cleanup runs the mode's cleanup hook and returns the controller to the
// uninitialized phase, dropping the cached prompt overrides and state
// store. Cleaning up an uninitialized controller is a no-op. Cleanup errors
// propagate and leave the controller initialized.
func (c *Controller) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	if err := c.mode.DoCleanup(ctx, c.deps); err != nil {
		return fmt.Errorf("failed to clean up mode %s: %w", c.descriptor.ID, err)
	}

	c.deps.Store = nil
	c.deps.Prompts = nil
	c.initialized = false
	logging.Info(subsystem, "Mode %s cleaned up", c.descriptor.ID)
	return nil
}

// Configure deep-merges a partial configuration into the runtime
// configuration and persists it immediately.
func (c *Controller) Configure(partial map[string]interface{}) (*config.Config, error) {
	return c.deps.Config.Update(partial)
}
