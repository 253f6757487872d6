package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up locally and under the user config dir.
const FileName = ".tapout.yaml"

// AppConfig represents the contents of .tapout.yaml.
type AppConfig struct {
	Format        string `yaml:"format" default:"auto"`
	Theme         string `yaml:"theme" default:"default"`
	NoColor       bool   `yaml:"no_color"`
	Debug         bool   `yaml:"debug"`
	MaxLineLength int    `yaml:"max_line_length" default:"1048576"` // bytes
	Jobs          int    `yaml:"jobs" default:"4"`                  // concurrent file parses
}

// NewAppConfig returns an AppConfig holding only defaults.
func NewAppConfig() *AppConfig {
	cfg := &AppConfig{}
	// Set only fails on non-pointer input or malformed tags.
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config: applying defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads the config file at path, or the first of the local and
// XDG locations when path is empty. It returns the path actually read, "" if
// no file was found.
func LoadConfig(path string) (*AppConfig, string, error) {
	explicit := path != ""
	if !explicit {
		path = getConfigPath()
	}
	if path == "" {
		return NewAppConfig(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return NewAppConfig(), "", nil
		}
		return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, "", fmt.Errorf("applying config defaults: %w", err)
	}
	return cfg, path, nil
}

// getConfigPath tries to find the config file.
// It checks the local directory first, then the user config dir.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "tapout", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
