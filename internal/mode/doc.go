// Package mode implements the mode lifecycle controller and the mode
// registry for parley.
//
// # Modes
//
// A mode is a pluggable unit of multi-turn interactive logic with its own
// state namespace. Concrete modes implement the Mode interface: five
// required hooks (DoInitialize, DoExecute, DoValidate, DoCleanup plus the
// state validation pair) that the Controller drives in a fixed order. This
// keeps the ordering contract of a template-method base class without any
// inheritance.
//
// # Lifecycle
//
// A controller moves through Uninitialized -> Initialized -> (Executing)* ->
// CleanedUp. Initialize is idempotent; a failing mode initialization hook
// leaves the controller re-enterable because the internal flag only flips
// after the hook succeeds. ExecuteWithResult lazily initializes when needed,
// times every call, and converts execution errors into a structured failure
// result instead of letting them escape, so a driving loop survives a bad
// turn. Initialization and cleanup errors propagate: those indicate the mode
// cannot safely run at all.
//
// # Registry
//
// The registry maps mode identifiers to descriptors registered once during
// startup composition. It enforces singleton-per-id construction and
// supplies every controller's dependencies (file primitives, configuration
// manager, a state store bound to the mode).
package mode
