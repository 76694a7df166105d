package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, Duration(24*time.Hour), cfg.MaxAge)
	assert.False(t, cfg.StaleFallback)
	assert.Equal(t, 32010, cfg.Warehouse.Port)
	assert.True(t, cfg.Warehouse.UseTLS)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
cache_dir: /var/cache/sqlstash
default_max_age: 2h30m
stale_fallback: true
warehouse:
  host: warehouse.example.com
  port: 32011
  use_tls: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/sqlstash", cfg.CacheDir)
	assert.Equal(t, Duration(2*time.Hour+30*time.Minute), cfg.MaxAge)
	assert.True(t, cfg.StaleFallback)
	assert.Equal(t, "warehouse.example.com:32011", cfg.Warehouse.Address())
	assert.False(t, cfg.Warehouse.UseTLS)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: [oops"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: /from/file\n"), 0o600))

	t.Setenv(EnvCacheDir, "/from/env")
	t.Setenv(EnvMaxAge, "45m")
	t.Setenv(EnvStaleFallback, "true")
	t.Setenv(EnvWarehouseHost, "env-host")
	t.Setenv(EnvWarehousePort, "9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.CacheDir)
	assert.Equal(t, Duration(45*time.Minute), cfg.MaxAge)
	assert.True(t, cfg.StaleFallback)
	assert.Equal(t, "env-host:9000", cfg.Warehouse.Address())
}

func TestEnvOverrideInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: /from/file\n"), 0o600))

	t.Setenv(EnvMaxAge, "eventually")
	_, err := Load(path)
	assert.ErrorContains(t, err, EnvMaxAge)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome(filepath.Join("~", "x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	// "~user" form is passed through untouched.
	got, err = ExpandHome("~other/x")
	require.NoError(t, err)
	assert.Equal(t, "~other/x", got)
}
