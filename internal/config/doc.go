// Package config implements layered configuration resolution for parley.
//
// # Layering
//
// The effective configuration is built by merging four sources, lowest to
// highest precedence:
//
//  1. Hard-coded defaults (GetDefaultConfig)
//  2. Base configuration file: config/config.yaml
//  3. User configuration file: config/config.json
//  4. Environment-variable substitution of ${VAR} placeholders in string
//     fields, resolved against config/parley.env and falling back to the
//     process environment
//
// The merge is a deep structural merge: nested mappings are merged
// key-by-key recursively, while scalars and arrays are replaced wholesale by
// the higher-precedence source.
//
// # Validation and Recovery
//
// After merging, the configuration is validated as a whole. Every violation
// found is collected into a single aggregated error rather than failing on
// the first. ValidateAndRecover goes one step further: on any load or
// validation failure it resets the persisted user configuration to the
// hard-coded defaults and reports what was wrong, so a caller can always
// proceed with a usable configuration.
//
// # Caching
//
// The Manager loads lazily on first access and caches the result. Explicit
// reloads are supported, and an optional fsnotify-based Watcher reloads
// automatically when configuration files change on disk.
package config
