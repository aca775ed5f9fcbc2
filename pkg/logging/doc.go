// Package logging provides subsystem-tagged structured logging for parley.
//
// The package wraps log/slog with a thin convenience layer so that every
// component logs through the same handler with a consistent "subsystem"
// attribute. Components call the package-level functions directly:
//
//	logging.Info("FileOps", "Wrote %d bytes to %s", n, path)
//	logging.Error("StateStore", err, "Failed to load state for mode %s", modeID)
//
// Initialization happens once at application startup via InitForCLI. Before
// initialization all log calls are suppressed, which keeps library-level tests
// quiet without any extra setup.
package logging
