package config

// Well-known configuration file locations, relative to the runtime root.
const (
	// ConfigDir is the directory holding all configuration files.
	ConfigDir = "config"

	// BaseConfigFile is the install-level base configuration (YAML).
	BaseConfigFile = "config/config.yaml"

	// UserConfigFile is the merged user configuration written by Save.
	UserConfigFile = "config/config.json"

	// EnvFile is the optional KEY=value file feeding ${VAR} substitution.
	EnvFile = "config/parley.env"
)

// Config is the merged runtime configuration. All fields carry JSON tags so
// the base YAML layer and the user JSON layer decode into the same shape.
type Config struct {
	// Version tags the configuration schema.
	Version string `json:"version"`

	// DefaultMode is the mode started when none is named on the command
	// line. Must be one of the registered built-in mode identifiers.
	DefaultMode string `json:"defaultMode"`

	// Paths holds the file locations the runtime reads and writes,
	// relative to the runtime root.
	Paths PathsConfig `json:"paths"`

	// Logging configures log verbosity and destination.
	Logging LoggingConfig `json:"logging"`

	// Preferences holds user-facing behavior toggles.
	Preferences PreferencesConfig `json:"preferences"`

	// Security holds the policy flags consumed by the file primitives.
	Security SecurityConfig `json:"security"`

	// CreatedAt is the ISO-8601 instant the configuration was first
	// written.
	CreatedAt string `json:"createdAt"`

	// UpdatedAt is the ISO-8601 instant of the last Save.
	UpdatedAt string `json:"updatedAt"`
}

// ValidDefaultModes enumerates the mode identifiers accepted for
// Config.DefaultMode. These match the built-in modes registered during
// startup composition.
var ValidDefaultModes = []string{"discovery", "planning"}

// PathsConfig holds the root-relative locations of runtime data.
type PathsConfig struct {
	// StateDir is where per-mode state records are stored.
	StateDir string `json:"stateDir"`

	// ModesDir is where per-mode prompt template overrides live.
	ModesDir string `json:"modesDir"`

	// BackupDir receives timestamped backups taken by file updates.
	BackupDir string `json:"backupDir"`

	// ArtifactFile is the generated project document.
	ArtifactFile string `json:"artifactFile"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level"`

	// Target is one of "stdout", "stderr".
	Target string `json:"target"`
}

// Valid values for LoggingConfig fields.
var (
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogTargets = []string{"stdout", "stderr"}
)

// PreferencesConfig holds user-preference booleans.
type PreferencesConfig struct {
	// AutoSaveState persists mode state after every successful turn.
	AutoSaveState bool `json:"autoSaveState"`

	// ColorOutput enables colored CLI output.
	ColorOutput bool `json:"colorOutput"`
}

// SecurityConfig holds the security policy flags enforced by the file
// primitives and the configuration loader.
type SecurityConfig struct {
	// MaxFileSizeBytes bounds any single read or write.
	MaxFileSizeBytes int64 `json:"maxFileSizeBytes"`

	// AllowEnvOverrides gates the ${VAR} substitution layer. When false,
	// placeholders are left untouched.
	AllowEnvOverrides bool `json:"allowEnvOverrides"`

	// BackupOnUpdate takes a timestamped backup before in-place updates.
	BackupOnUpdate bool `json:"backupOnUpdate"`
}
