// Package config loads the sqlstash configuration: a YAML file with
// environment-variable overrides, resolved once at startup and passed to the
// components that need it. There is deliberately no process-wide default
// instance.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized as overrides. Flag > env > file > default.
const (
	EnvCacheDir      = "SQLSTASH_CACHE_DIR"
	EnvMaxAge        = "SQLSTASH_MAX_AGE"
	EnvStaleFallback = "SQLSTASH_STALE_FALLBACK"
	EnvWarehouseHost = "SQLSTASH_WAREHOUSE_HOST"
	EnvWarehousePort = "SQLSTASH_WAREHOUSE_PORT"
)

// DefaultMaxAge mirrors the cache manager's default freshness threshold.
const DefaultMaxAge = 24 * time.Hour

// Duration wraps time.Duration so YAML values like "24h" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Warehouse holds the remote endpoint settings handed to the executor.
// Credentials are not configured here; the executor reads them from the
// environment (and .env) itself.
type Warehouse struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	UseTLS bool   `yaml:"use_tls"`
}

// Address returns the host:port dial target.
func (w Warehouse) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// Config is the resolved sqlstash configuration.
type Config struct {
	CacheDir      string    `yaml:"cache_dir"`
	MaxAge        Duration  `yaml:"default_max_age"`
	StaleFallback bool      `yaml:"stale_fallback"`
	Warehouse     Warehouse `yaml:"warehouse"`
}

// Default returns the configuration used when no file or overrides are
// present. The cache lives under the user's home directory.
func Default() *Config {
	return &Config{
		CacheDir: filepath.Join("~", ".sqlstash", "cache"),
		MaxAge:   Duration(DefaultMaxAge),
		Warehouse: Warehouse{
			Port:   32010,
			UseTLS: true,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.sqlstash/config.yaml.
func DefaultPath() string {
	return filepath.Join("~", ".sqlstash", "config.yaml")
}

// Load reads the config file at path (DefaultPath when empty), applies
// environment overrides, and expands "~" in the cache directory. A missing
// file is not an error; an unreadable or malformed one is. An explicit path
// that does not exist is an error, since the user asked for that file.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.CacheDir, err = ExpandHome(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		c.CacheDir = dir
	}
	if raw := os.Getenv(EnvMaxAge); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", EnvMaxAge, raw, err)
		}
		c.MaxAge = Duration(d)
	}
	if raw := os.Getenv(EnvStaleFallback); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q: %w", EnvStaleFallback, raw, err)
		}
		c.StaleFallback = v
	}
	if host := os.Getenv(EnvWarehouseHost); host != "" {
		c.Warehouse.Host = host
	}
	if raw := os.Getenv(EnvWarehousePort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q: %w", EnvWarehousePort, raw, err)
		}
		c.Warehouse.Port = port
	}
	return nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
