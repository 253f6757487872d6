package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/dkoosis/tapout/pkg/render"
)

// Formats accepted by -format.
var Formats = []string{"auto", "terminal", "llm", "json", "events"}

// CliFlags holds the values of command-line flags. The *Set fields record
// whether the user passed the flag explicitly.
type CliFlags struct {
	ConfigPath    string
	Format        string
	Theme         string
	NoColor       bool
	Debug         bool
	MaxLineLength int

	FormatSet        bool
	ThemeSet         bool
	NoColorSet       bool
	DebugSet         bool
	MaxLineLengthSet bool
}

// ResolvedConfig holds the final configuration after applying all priority
// rules.
type ResolvedConfig struct {
	Format        string
	Theme         string
	NoColor       bool
	Debug         bool
	MaxLineLength int
	Jobs          int

	// Resolution metadata, logged at debug level.
	ConfigFile    string // "" when no file was read
	FormatSource  string // "cli", "env", "file", "default"
	ThemeSource   string
	NoColorSource string
}

// ResolveConfig resolves configuration from all sources.
//
// Resolution order:
//  1. Load base config from the config file (or defaults)
//  2. Apply environment variables
//  3. Apply CLI flags (highest priority)
//  4. Validate
func ResolveConfig(flags CliFlags) (*ResolvedConfig, error) {
	appCfg, path, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	fileSource := "default"
	if path != "" {
		fileSource = "file"
	}
	resolved := &ResolvedConfig{
		Format:        appCfg.Format,
		Theme:         appCfg.Theme,
		NoColor:       appCfg.NoColor,
		Debug:         appCfg.Debug,
		MaxLineLength: appCfg.MaxLineLength,
		Jobs:          appCfg.Jobs,
		ConfigFile:    path,
		FormatSource:  fileSource,
		ThemeSource:   fileSource,
		NoColorSource: fileSource,
	}

	if v := os.Getenv("TAPOUT_FORMAT"); v != "" {
		resolved.Format, resolved.FormatSource = v, "env"
	}
	if v := os.Getenv("TAPOUT_THEME"); v != "" {
		resolved.Theme, resolved.ThemeSource = v, "env"
	}
	if b := getEnvBool("TAPOUT_NO_COLOR"); b != nil {
		resolved.NoColor, resolved.NoColorSource = *b, "env"
	} else if os.Getenv("NO_COLOR") != "" {
		resolved.NoColor, resolved.NoColorSource = true, "env"
	}
	if b := getEnvBool("TAPOUT_DEBUG"); b != nil {
		resolved.Debug = *b
	}

	if flags.FormatSet {
		resolved.Format, resolved.FormatSource = flags.Format, "cli"
	}
	if flags.ThemeSet {
		resolved.Theme, resolved.ThemeSource = flags.Theme, "cli"
	}
	if flags.NoColorSet {
		resolved.NoColor, resolved.NoColorSource = flags.NoColor, "cli"
	}
	if flags.DebugSet {
		resolved.Debug = flags.Debug
	}
	if flags.MaxLineLengthSet {
		resolved.MaxLineLength = flags.MaxLineLength
	}

	if resolved.NoColor {
		resolved.Theme = "mono"
	}

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set to a parseable value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validateResolvedConfig(cfg *ResolvedConfig) error {
	if !slices.Contains(Formats, cfg.Format) {
		return fmt.Errorf("unknown format %q (expected one of %v)", cfg.Format, Formats)
	}
	if !slices.Contains(render.ThemeNames, cfg.Theme) {
		return fmt.Errorf("unknown theme %q (expected one of %v)", cfg.Theme, render.ThemeNames)
	}
	if cfg.MaxLineLength <= 0 {
		return fmt.Errorf("max_line_length must be positive, got: %d", cfg.MaxLineLength)
	}
	if cfg.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive, got: %d", cfg.Jobs)
	}
	return nil
}
