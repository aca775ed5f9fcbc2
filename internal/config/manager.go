package config

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dario.cat/mergo"
	sigsyaml "sigs.k8s.io/yaml"

	"parley/internal/api"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

// RecoveryResult reports the outcome of ValidateAndRecover. Valid is always
// true on return: either the existing configuration loaded cleanly, or it
// was reset to defaults and Recovered is set alongside the collected errors.
type RecoveryResult struct {
	Valid     bool     `json:"valid"`
	Recovered bool     `json:"recovered"`
	Errors    []string `json:"errors"`
}

// Manager owns the cached merged configuration for a process. It loads
// lazily on first access, supports explicit reloads, persists updates
// immediately, and can self-heal from corrupted files.
//
// The cache is process-local: cross-process readers always go through the
// validated file contents, never this cache.
type Manager struct {
	mu     sync.RWMutex
	files  *fileops.FileOps
	cached *Config
}

// NewManager creates a configuration manager bound to the given file
// primitives.
func NewManager(files *fileops.FileOps) *Manager {
	return &Manager{files: files}
}

// Get returns the merged configuration, loading and caching it on first
// access.
func (m *Manager) Get() (*Config, error) {
	m.mu.RLock()
	if m.cached != nil {
		defer m.mu.RUnlock()
		return m.cached, nil
	}
	m.mu.RUnlock()

	return m.Reload()
}

// Reload discards the cache and re-resolves the layered configuration from
// disk.
func (m *Manager) Reload() (*Config, error) {
	cfg, err := Load(m.files)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cached = cfg
	m.mu.Unlock()

	logging.Info(subsystem, "Configuration loaded (version=%s)", cfg.Version)
	return cfg, nil
}

// Save validates cfg, stamps UpdatedAt, and persists it atomically as the
// user configuration layer. The cache is replaced with the saved value.
func (m *Manager) Save(cfg *Config) error {
	cfg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if cfg.CreatedAt == "" {
		cfg.CreatedAt = cfg.UpdatedAt
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if _, err := m.files.Write(UserConfigFile, raw); err != nil {
		return fmt.Errorf("failed to persist configuration: %w", err)
	}

	m.mu.Lock()
	m.cached = cfg
	m.mu.Unlock()

	logging.Info(subsystem, "Configuration saved to %s", UserConfigFile)
	return nil
}

// Update deep-merges a partial configuration into the current merged value
// and persists the result immediately. Nested mappings merge key-by-key;
// scalars and arrays in the partial replace the current values.
func (m *Manager) Update(partial map[string]interface{}) (*Config, error) {
	current, err := m.Get()
	if err != nil {
		return nil, err
	}

	merged, err := toMap(*current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode current configuration: %w", err)
	}
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge configuration update: %w", err)
	}

	cfg, err := decodeConfig(merged)
	if err != nil {
		return nil, err
	}

	if err := m.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateAndRecover attempts a normal load. On any failure (parse error or
// validation error) it resets the persisted user configuration to the
// hard-coded defaults and reports what was wrong, so the caller can surface
// the problem while still proceeding with a usable configuration. An
// unparseable base file is quarantined to a .bak sibling first; resetting
// the user layer alone cannot heal it, since every later load would hit the
// same parse error.
func (m *Manager) ValidateAndRecover() (*RecoveryResult, error) {
	if _, err := m.Reload(); err == nil {
		return &RecoveryResult{Valid: true}, nil
	} else {
		logging.Warn(subsystem, "Configuration is corrupt, resetting to defaults: %v", err)

		result := &RecoveryResult{
			Valid:     true,
			Recovered: true,
			Errors:    collectErrorMessages(err),
		}

		if err := m.quarantineBaseLayer(); err != nil {
			return nil, fmt.Errorf("failed to quarantine corrupt base configuration: %w", err)
		}

		defaults := GetDefaultConfig()
		if saveErr := m.Save(&defaults); saveErr != nil {
			return nil, fmt.Errorf("failed to reset configuration to defaults: %w", saveErr)
		}

		// Prove the recovery actually took: a load that still fails here
		// means the installation needs manual attention.
		if _, reloadErr := m.Reload(); reloadErr != nil {
			return nil, fmt.Errorf("configuration still fails to load after recovery: %w", reloadErr)
		}

		return result, nil
	}
}

// quarantineBaseLayer moves an unparseable config/config.yaml out of the
// load path, preserving its contents in a .bak sibling for inspection. A
// missing or parseable base file is left alone.
func (m *Manager) quarantineBaseLayer() error {
	content, _, err := m.files.Read(BaseConfigFile)
	if err != nil {
		if api.IsNotFound(err) {
			return nil
		}
		return err
	}

	var layer map[string]interface{}
	if sigsyaml.Unmarshal(content, &layer) == nil {
		return nil
	}

	backupPath := BaseConfigFile + ".bak"
	if _, err := m.files.Write(backupPath, content); err != nil {
		return fmt.Errorf("failed to preserve %s as %s: %w", BaseConfigFile, backupPath, err)
	}
	if err := m.files.Delete(BaseConfigFile); err != nil {
		return err
	}

	logging.Warn(subsystem, "Quarantined unparseable base configuration to %s", backupPath)
	return nil
}

// collectErrorMessages flattens an aggregated validation error into its
// individual messages, or wraps a single error as a one-element list.
func collectErrorMessages(err error) []string {
	if verrs, ok := err.(ValidationErrors); ok {
		return verrs.Messages()
	}
	return []string{err.Error()}
}
