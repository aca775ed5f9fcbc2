// Package api defines the shared error taxonomy used across the parley
// runtime.
//
// Every subsystem boundary translates raw failures into one of the typed
// errors defined here before propagating them, so that callers can branch on
// error category with errors.As instead of string matching:
//
//   - NotFoundError: a file, state record, or mode does not exist
//   - PermissionError: the operating system denied access to a path
//   - ValidationError: content, size, or schema constraints were violated
//   - DependencyMissingError: a mode declares a dependency that is not registered
//   - ModeDisabledError: a mode is administratively disabled
//
// The companion Is* helpers support wrapped errors, so callers may add context
// with fmt.Errorf("...: %w", err) freely.
package api
