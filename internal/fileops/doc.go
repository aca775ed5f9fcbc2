// Package fileops provides the low-level file operation primitives for the
// parley runtime.
//
// A FileOps instance is the exclusive owner of all byte-level reads and
// writes beneath its root directory. Higher layers (the state store, the
// configuration manager, the artifact writer) never touch the filesystem
// directly; they go through a FileOps instance that is constructed once
// during application bootstrap and passed down explicitly.
//
// # Atomic Writes
//
// The default write path is atomic: content is written to a sibling temporary
// file with a unique suffix, verified against the on-disk size, and then
// renamed over the final path. The rename is the only step visible to
// concurrent readers, so a reader either observes the previous content in
// full or the new content in full, never a partial file. If any step after
// temp-file creation fails, the temp file is removed before the error is
// propagated.
//
// This pattern protects against a single writer crashing mid-write. It does
// not arbitrate between two concurrent writers; if two processes write the
// same path the last rename wins.
//
// # Content Normalization
//
// All textual writes normalize line endings to "\n" and guarantee exactly one
// trailing newline, so persisted files diff cleanly under version control.
// Content containing a null byte is rejected before any write attempt.
//
// # Path Confinement
//
// All paths are namespace-relative. Absolute paths and paths escaping the
// root via ".." are rejected.
package fileops
