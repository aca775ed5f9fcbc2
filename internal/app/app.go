// Package app bootstraps the parley runtime: it wires the file primitives,
// configuration manager, mode registry, and output formatting together, and
// runs either an interactive session or single conversation turns on top of
// them.
//
// Bootstrap is two-phase: a provisional file-primitives instance loads the
// configuration, then the definitive instance is rebuilt with the configured
// security policy (size limit, backup directory) before anything else runs.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"parley/internal/config"
	"parley/internal/fileops"
	"parley/internal/formatting"
	"parley/internal/mode"
	"parley/internal/modes/discovery"
	"parley/internal/modes/planning"
	"parley/internal/repl"
	"parley/pkg/logging"
)

const subsystem = "Bootstrap"

// ErrConfigLoad marks bootstrap failures caused by the persisted
// configuration, so the CLI can point the user at the recovery command.
var ErrConfigLoad = errors.New("failed to load configuration")

// Config carries the command-line level settings for one invocation.
type Config struct {
	// Root is the runtime root directory all files live under.
	Root string

	// ModeID selects the starting mode; empty uses the configured default.
	ModeID string

	// Format selects the output format (table, json).
	Format string

	// Debug raises the log level to debug.
	Debug bool

	// Quiet suppresses spinners, timing output, and info logging.
	Quiet bool

	// WatchConfig auto-reloads the configuration when files under the
	// config directory change.
	WatchConfig bool
}

// Application is the composed runtime.
type Application struct {
	config    *Config
	files     *fileops.FileOps
	manager   *config.Manager
	registry  *mode.Registry
	formatter *formatting.Formatter
}

// NewApplication performs the full bootstrap sequence. It fails when the
// root is unusable or the persisted configuration does not validate; the
// self-healing path is config.Manager.ValidateAndRecover, wired directly by
// the recovery command.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	} else if cfg.Quiet {
		level = logging.LevelError
	}
	logging.InitForCLI(level, os.Stderr)

	// Provisional primitives with default policy, just to read the
	// configuration.
	boot, err := fileops.New(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open runtime root: %w", err)
	}

	merged, err := config.NewManager(boot).Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	files, err := fileops.New(cfg.Root,
		fileops.WithMaxFileSize(merged.Security.MaxFileSizeBytes),
		fileops.WithBackupDir(merged.Paths.BackupDir),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open runtime root: %w", err)
	}
	manager := config.NewManager(files)

	registry := mode.NewRegistry(files, manager)
	for _, d := range []mode.Descriptor{discovery.Descriptor(), planning.Descriptor()} {
		if err := registry.Register(d); err != nil {
			return nil, fmt.Errorf("failed to register built-in modes: %w", err)
		}
	}
	registry.Freeze()

	format := formatting.OutputFormat(cfg.Format)
	if cfg.Format == "" {
		format = formatting.FormatTable
	}
	formatter := formatting.New(formatting.Options{
		Format: format,
		Quiet:  cfg.Quiet,
		Color:  merged.Preferences.ColorOutput && !cfg.Quiet,
	})

	logging.Debug(subsystem, "Runtime composed at %s with %d modes", cfg.Root, len(registry.IDs()))
	return &Application{
		config:    cfg,
		files:     files,
		manager:   manager,
		registry:  registry,
		formatter: formatter,
	}, nil
}

// Registry exposes the mode registry.
func (a *Application) Registry() *mode.Registry {
	return a.registry
}

// ConfigManager exposes the configuration manager.
func (a *Application) ConfigManager() *config.Manager {
	return a.manager
}

// Files exposes the file primitives.
func (a *Application) Files() *fileops.FileOps {
	return a.files
}

// Formatter exposes the output formatter.
func (a *Application) Formatter() *formatting.Formatter {
	return a.formatter
}

// startingMode resolves the mode for this invocation: the explicit flag, or
// the configured default.
func (a *Application) startingMode() (string, error) {
	if a.config.ModeID != "" {
		return a.config.ModeID, nil
	}
	merged, err := a.manager.Get()
	if err != nil {
		return "", err
	}
	return merged.DefaultMode, nil
}

// Run starts the interactive session and blocks until it ends. The
// configuration watcher, when enabled, runs alongside and stops with it.
func (a *Application) Run(ctx context.Context) error {
	modeID, err := a.startingMode()
	if err != nil {
		return err
	}

	session, err := repl.New(a.registry, modeID, a.formatter, repl.Options{
		Quiet:       a.config.Quiet,
		HistoryFile: filepath.Join(a.config.Root, ".parley_history"),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return session.Run(gctx)
	})
	if a.config.WatchConfig {
		watcher := config.NewWatcher(a.manager)
		g.Go(func() error {
			return watcher.Start(gctx)
		})
	}

	runErr := g.Wait()
	a.cleanup(context.Background())
	return runErr
}

// ExecuteTurn runs exactly one conversation turn against the named mode
// (empty selects the default) and returns the structured result.
func (a *Application) ExecuteTurn(ctx context.Context, modeID, input string) (*mode.Result, error) {
	if modeID == "" {
		var err error
		if modeID, err = a.startingMode(); err != nil {
			return nil, err
		}
	}

	controller, err := a.registry.Get(modeID)
	if err != nil {
		return nil, err
	}
	return controller.ExecuteWithResult(ctx, input), nil
}

// Validate runs validation for the named mode, or for every registered
// mode when modeID is empty. Reports are keyed by mode identifier.
func (a *Application) Validate(ctx context.Context, modeID string) (map[string]*mode.Report, error) {
	ids := a.registry.IDs()
	if modeID != "" {
		if !a.registry.Has(modeID) {
			return nil, fmt.Errorf("mode %s is not registered", modeID)
		}
		ids = []string{modeID}
	}

	reports := make(map[string]*mode.Report, len(ids))
	for _, id := range ids {
		controller, err := a.registry.Get(id)
		if err != nil {
			return nil, err
		}
		reports[id] = controller.Validate(ctx)
	}
	return reports, nil
}

// cleanup tears down every initialized mode, logging rather than failing on
// individual errors so one stuck mode cannot block shutdown reporting.
func (a *Application) cleanup(ctx context.Context) {
	for _, id := range a.registry.IDs() {
		controller, err := a.registry.Get(id)
		if err != nil {
			continue
		}
		if !controller.Initialized() {
			continue
		}
		if err := controller.Cleanup(ctx); err != nil {
			logging.Error(subsystem, err, "Failed to clean up mode %s", id)
		}
	}
}
