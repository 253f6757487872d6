package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves the test into an empty working directory with an empty
// user config dir so no real .tapout.yaml leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, k := range []string{"TAPOUT_FORMAT", "TAPOUT_THEME", "TAPOUT_DEBUG", "TAPOUT_NO_COLOR", "NO_COLOR"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, 1<<20, cfg.MaxLineLength)
	assert.Equal(t, 4, cfg.Jobs)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.NoColor)
}

func TestLoadConfig_NoFile(t *testing.T) {
	isolate(t)

	cfg, path, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, NewAppConfig(), cfg)
}

func TestLoadConfig_LocalFileFillsGapsWithDefaults(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(FileName, []byte("theme: orca\ndebug: true\n"), 0o600))

	cfg, path, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, FileName, path)
	assert.Equal(t, "orca", cfg.Theme)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "auto", cfg.Format, "unset field keeps default")
	assert.Equal(t, 4, cfg.Jobs)
}

func TestLoadConfig_XDGFile(t *testing.T) {
	dir := isolate(t)
	xdg := filepath.Join(dir, "xdg", "tapout")
	require.NoError(t, os.MkdirAll(xdg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, FileName), []byte("format: llm\n"), 0o600))

	cfg, path, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, FileName), path)
	assert.Equal(t, "llm", cfg.Format)
}

func TestLoadConfig_LocalWinsOverXDG(t *testing.T) {
	dir := isolate(t)
	xdg := filepath.Join(dir, "xdg", "tapout")
	require.NoError(t, os.MkdirAll(xdg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, FileName), []byte("format: llm\n"), 0o600))
	require.NoError(t, os.WriteFile(FileName, []byte("format: json\n"), 0o600))

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadConfig_ExplicitMissingFileErrors(t *testing.T) {
	dir := isolate(t)

	_, _, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(FileName, []byte("format: [\n"), 0o600))

	_, _, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}
