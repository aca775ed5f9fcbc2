package mode

import (
	"fmt"
	"sync"

	"parley/internal/api"
	"parley/internal/config"
	"parley/internal/dependency"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

// Descriptor declares one mode to the registry: its identity, factory, and
// composition metadata. Descriptors are registered once during startup and
// treated as immutable afterwards.
type Descriptor struct {
	// ID is the unique mode identifier.
	ID string

	// Description is a one-line summary shown in listings.
	Description string

	// Dependencies names the mode identifiers this mode requires to be
	// registered.
	Dependencies []string

	// LoadPriority orders composition; lower values compose first.
	LoadPriority int

	// Enabled gates execution. Disabled modes stay listed and queryable
	// but fail validation and refuse to run.
	Enabled bool

	// New constructs a fresh mode instance. Called at most once per
	// registry: controllers are singletons per identifier.
	New func() Mode
}

// Registry holds the registered mode descriptors and their lazily
// constructed singleton controllers. It is frozen at the end of startup
// composition; registrations after that fail.
type Registry struct {
	mu          sync.RWMutex
	files       *fileops.FileOps
	config      *config.Manager
	descriptors map[string]Descriptor
	controllers map[string]*Controller
	frozen      bool
}

// NewRegistry creates an empty registry wired to the shared file primitives
// and configuration manager.
func NewRegistry(files *fileops.FileOps, cfg *config.Manager) *Registry {
	return &Registry{
		files:       files,
		config:      cfg,
		descriptors: make(map[string]Descriptor),
		controllers: make(map[string]*Controller),
	}
}

// Register adds a mode descriptor. A duplicate identifier, an empty
// identifier, a nil factory, or a frozen registry all fail registration.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("cannot register mode %s: %w", d.ID, api.ErrRegistryFrozen)
	}
	if d.ID == "" {
		return api.NewValidationError("descriptor", "mode identifier must not be empty")
	}
	if d.New == nil {
		return api.NewValidationError(d.ID, "mode descriptor has no factory")
	}
	if _, exists := r.descriptors[d.ID]; exists {
		return api.NewValidationError(d.ID, "mode is already registered")
	}

	r.descriptors[d.ID] = d
	logging.Debug("ModeRegistry", "Registered mode %s (priority=%d, enabled=%t)", d.ID, d.LoadPriority, d.Enabled)
	return nil
}

// Freeze seals the registry. Further registrations fail with
// ErrRegistryFrozen; lookups and controller construction keep working.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	logging.Debug("ModeRegistry", "Registry frozen with %d modes", len(r.descriptors))
}

// Has reports whether a mode identifier is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[id]
	return ok
}

// Descriptor returns the registered descriptor for id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[id]
	return d, ok
}

// Descriptors returns every registered descriptor in composition order
// (load priority ascending, ties broken lexically).
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.graphLocked().IDs()
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.descriptors[string(id)])
	}
	return out
}

// IDs returns the registered mode identifiers in composition order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.graphLocked().IDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

// Graph builds the dependency graph over the registered descriptors.
func (r *Registry) Graph() *dependency.Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graphLocked()
}

func (r *Registry) graphLocked() *dependency.Graph {
	g := dependency.New()
	for _, d := range r.descriptors {
		deps := make([]dependency.ModeID, 0, len(d.Dependencies))
		for _, dep := range d.Dependencies {
			deps = append(deps, dependency.ModeID(dep))
		}
		g.AddNode(dependency.Node{
			ID:           dependency.ModeID(d.ID),
			Dependencies: deps,
			LoadPriority: d.LoadPriority,
			Enabled:      d.Enabled,
		})
	}
	return g
}

// MissingDependencies returns the declared dependencies of id that are not
// registered, in sorted order.
func (r *Registry) MissingDependencies(id string) []string {
	missing := r.Graph().Missing(dependency.ModeID(id))
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		out = append(out, string(m))
	}
	return out
}

// Get returns the singleton controller for id, constructing it on first
// access. Unknown identifiers fail with a NotFoundError.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	if c, ok := r.controllers[id]; ok {
		r.mu.RUnlock()
		return c, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[id]; ok {
		return c, nil
	}
	d, ok := r.descriptors[id]
	if !ok {
		return nil, api.NewModeNotFoundError(id)
	}

	c := newController(r, d)
	r.controllers[id] = c
	return c, nil
}
