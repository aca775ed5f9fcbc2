package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	sigsyaml "sigs.k8s.io/yaml"

	"parley/internal/api"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

const subsystem = "ConfigLoader"

// placeholderPattern matches ${VAR} substitution directives in string
// fields of the merged configuration.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load resolves the layered configuration through the given file primitives:
// defaults, then config/config.yaml, then config/config.json, then ${VAR}
// substitution. The merged result is validated before it is returned; on any
// violation the resolver fails closed.
func Load(files *fileops.FileOps) (*Config, error) {
	merged, err := loadMergedMap(files)
	if err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(merged)
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	logging.Debug(subsystem, "Resolved configuration (version=%s, defaultMode=%s)", cfg.Version, cfg.DefaultMode)
	return cfg, nil
}

// loadMergedMap builds the merged configuration as a generic map so that
// nested mappings merge key-by-key while scalars and arrays are replaced
// wholesale by higher-precedence layers.
func loadMergedMap(files *fileops.FileOps) (map[string]interface{}, error) {
	merged, err := toMap(GetDefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default configuration: %w", err)
	}

	// Base layer: config/config.yaml. Decoded through sigs.k8s.io/yaml so
	// the JSON field names used everywhere else apply here too.
	if base, err := loadLayer(files, BaseConfigFile, unmarshalYAML); err != nil {
		return nil, err
	} else if base != nil {
		if err := mergo.Merge(&merged, base, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge base configuration: %w", err)
		}
		logging.Debug(subsystem, "Applied base configuration from %s", BaseConfigFile)
	}

	// User layer: config/config.json.
	if user, err := loadLayer(files, UserConfigFile, json.Unmarshal); err != nil {
		return nil, err
	} else if user != nil {
		if err := mergo.Merge(&merged, user, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge user configuration: %w", err)
		}
		logging.Debug(subsystem, "Applied user configuration from %s", UserConfigFile)
	}

	// Highest layer: ${VAR} substitution on string fields, gated by the
	// merged security policy.
	if allowEnv(merged) {
		substituteEnv(merged, newEnvLookup(files))
	}

	return merged, nil
}

// unmarshalYAML narrows the variadic sigs.k8s.io/yaml signature to the
// layer-parser shape.
func unmarshalYAML(content []byte, v interface{}) error {
	return sigsyaml.Unmarshal(content, v)
}

// loadLayer reads and parses one configuration file into a generic map. A
// missing file is a legitimate empty layer (nil map, nil error).
func loadLayer(files *fileops.FileOps, relPath string, unmarshal func([]byte, interface{}) error) (map[string]interface{}, error) {
	content, _, err := files.Read(relPath)
	if err != nil {
		if api.IsNotFound(err) {
			logging.Debug(subsystem, "No configuration at %s, skipping layer", relPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read configuration layer %s: %w", relPath, err)
	}

	var layer map[string]interface{}
	if err := unmarshal(content, &layer); err != nil {
		return nil, fmt.Errorf("failed to parse configuration layer %s: %w", relPath, err)
	}
	return layer, nil
}

// decodeConfig converts the merged map into the typed Config. Type
// mismatches (e.g. a string where a boolean is required) surface here as
// decode errors, which the resolver treats the same as parse errors.
func decodeConfig(merged map[string]interface{}) (*Config, error) {
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged configuration: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("merged configuration is malformed: %w", err)
	}
	return &cfg, nil
}

// toMap round-trips a typed value through JSON into a generic map.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// allowEnv reads the merged security.allowEnvOverrides flag without decoding
// the whole configuration.
func allowEnv(merged map[string]interface{}) bool {
	security, ok := merged["security"].(map[string]interface{})
	if !ok {
		return false
	}
	allowed, ok := security["allowEnvOverrides"].(bool)
	return ok && allowed
}

// newEnvLookup builds the substitution source: the optional local
// environment file first, the process environment as fallback.
func newEnvLookup(files *fileops.FileOps) func(string) (string, bool) {
	var fileVars map[string]string
	if content, _, err := files.Read(EnvFile); err == nil {
		parsed, parseErr := godotenv.UnmarshalBytes(content)
		if parseErr != nil {
			logging.Warn(subsystem, "Ignoring malformed environment file %s: %v", EnvFile, parseErr)
		} else {
			fileVars = parsed
		}
	}

	return func(key string) (string, bool) {
		if value, ok := fileVars[key]; ok {
			return value, true
		}
		return os.LookupEnv(key)
	}
}

// substituteEnv walks the merged map in place and resolves ${VAR}
// placeholders in string values. Unresolvable placeholders are left intact
// and logged, so a missing variable is visible rather than silently blanked.
func substituteEnv(node map[string]interface{}, lookup func(string) (string, bool)) {
	for key, value := range node {
		switch v := value.(type) {
		case string:
			node[key] = expandPlaceholders(v, lookup)
		case map[string]interface{}:
			substituteEnv(v, lookup)
		case []interface{}:
			for i, item := range v {
				if s, ok := item.(string); ok {
					v[i] = expandPlaceholders(s, lookup)
				} else if m, ok := item.(map[string]interface{}); ok {
					substituteEnv(m, lookup)
				}
			}
		}
	}
}

func expandPlaceholders(s string, lookup func(string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := lookup(key); ok {
			return value
		}
		logging.Warn(subsystem, "Unresolved configuration placeholder %s", match)
		return match
	})
}
