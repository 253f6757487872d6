// Package config handles configuration loading and merging for tapout.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (-format, -theme, -debug, -no-color, -max-line)
//  2. Environment variables (TAPOUT_FORMAT, TAPOUT_THEME, TAPOUT_DEBUG, TAPOUT_NO_COLOR, NO_COLOR)
//  3. YAML config file (.tapout.yaml in the working directory, or
//     $XDG_CONFIG_HOME/tapout/.tapout.yaml)
//  4. Struct defaults declared with `default:` tags
//
// # Environment Variables
//
//   - TAPOUT_FORMAT: output format (auto, terminal, llm, json, events)
//   - TAPOUT_THEME: terminal theme (default, orca, mono)
//   - TAPOUT_DEBUG: "true" or "1" enables debug logging
//   - TAPOUT_NO_COLOR: "true" or "1" forces the mono theme
//   - NO_COLOR: any non-empty value forces the mono theme
package config
