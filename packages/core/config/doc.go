// Package config handles configuration loading and management for asynchttp.
//
// It provides functionality for:
//   - Loading configuration from .asynchttp.yaml, .asynchttp.yml or .asynchttp.json files
//   - Default configuration values
//   - Merging file configuration with command-line overrides
package config
