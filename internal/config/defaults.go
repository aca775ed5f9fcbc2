package config

import "time"

// ConfigVersion is the current configuration schema version.
const ConfigVersion = "1"

// DefaultModeID is the mode started when the user names none.
const DefaultModeID = "discovery"

// GetDefaultConfig returns the hard-coded default configuration. This is the
// lowest-precedence layer and the target of ValidateAndRecover resets.
func GetDefaultConfig() Config {
	now := time.Now().UTC().Format(time.RFC3339)
	return Config{
		Version:     ConfigVersion,
		DefaultMode: DefaultModeID,
		Paths: PathsConfig{
			StateDir:     "state",
			ModesDir:     "modes",
			BackupDir:    "backups",
			ArtifactFile: "project.md",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Target: "stderr",
		},
		Preferences: PreferencesConfig{
			AutoSaveState: true,
			ColorOutput:   true,
		},
		Security: SecurityConfig{
			MaxFileSizeBytes:  10 * 1024 * 1024,
			AllowEnvOverrides: true,
			BackupOnUpdate:    true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
