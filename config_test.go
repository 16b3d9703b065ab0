package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	cfg, err := ensureConfig()
	require.NoError(t, err)
	return cfg
}

func TestEnsureConfig(t *testing.T) {
	t.Run("creates settings file with defaults", func(t *testing.T) {
		cfg := testConfig(t)
		require.FileExists(t, cfg.SettingsPath)
		require.Equal(t, filepath.Join("parley", "parley.yml"), trimBase(t, cfg.SettingsPath))
		require.Equal(t, defaultEndpoint, cfg.Endpoint)
		require.Equal(t, "gpt-4o-mini", cfg.Model)
		require.DirExists(t, cfg.CachePath)
	})

	t.Run("environment overrides settings", func(t *testing.T) {
		t.Setenv("PARLEY_MODEL", "env-model")
		t.Setenv("PARLEY_ENDPOINT", "http://example.test/api/chat")
		cfg := testConfig(t)
		require.Equal(t, "env-model", cfg.Model)
		require.Equal(t, "http://example.test/api/chat", cfg.Endpoint)
	})

	t.Run("existing file is not overwritten", func(t *testing.T) {
		confDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", confDir)
		t.Setenv("XDG_DATA_HOME", t.TempDir())
		xdg.Reload()
		path := filepath.Join(confDir, "parley", "parley.yml")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte("default-model: custom\n"), 0o600))

		cfg, err := ensureConfig()
		require.NoError(t, err)
		require.Equal(t, "custom", cfg.Model)
	})
}

func trimBase(t *testing.T, path string) string {
	t.Helper()
	dir, file := filepath.Split(path)
	return filepath.Join(filepath.Base(filepath.Clean(dir)), file)
}
