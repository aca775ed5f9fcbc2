// Package state implements the durable, schema-versioned state store for
// parley modes.
//
// Each mode owns a private namespace under the state directory; one Record
// is persisted per JSON file at state/<modeID>/<stateID>.json through the
// atomic write path of the file primitives, so a crash mid-save never leaves
// a torn record on disk.
//
// # Most-Recent Selection
//
// Load with an empty state id selects the lexically greatest filename in the
// mode's namespace. Identifiers generated by NewStateID embed a zero-padded
// UTC timestamp, which makes lexical order equal temporal order. Callers
// supplying their own identifiers must preserve that property if they rely
// on latest-record selection.
//
// # Validation and Migration
//
// After deserializing, the store consults the mode-supplied validator. Two
// signals are kept strictly apart: a structurally invalid record (malformed
// field types) is a hard error, while an old-but-valid record (missing or
// outdated schemaVersion) triggers the mode-supplied migration function
// before the record is handed back. Migrated records are not implicitly
// re-persisted; callers must Save explicitly if they want the migration to
// stick.
package state
