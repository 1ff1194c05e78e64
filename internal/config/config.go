// Package config provides configuration management for topodiagram.
//
// Config file locations (priority order):
//  1. $TOPODIAGRAM_CONFIG
//  2. ./topodiagram.yaml
//  3. $XDG_CONFIG_HOME/topodiagram/config.yaml
//  4. ~/.config/topodiagram/config.yaml
//  5. /etc/topodiagram/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for values missing from the config file
const (
	DefaultAddr            = ":3000"
	DefaultDatabasePath    = "./topodiagram.db"
	DefaultExportDir       = "./exports"
	DefaultRasterScale     = 2.0
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDebounce        = 500 * time.Millisecond
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := *DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Viewer:   ViewerConfig{Editable: true},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults. The database path is
// left alone so an explicit empty path keeps the session store disabled.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
	if c.Export.RasterScale == 0 {
		c.Export.RasterScale = DefaultRasterScale
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Export.RasterScale < 0 {
		return fmt.Errorf("export.raster_scale must be positive, got %v", c.Export.RasterScale)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// StoreEnabled reports whether a session store is configured
func (c *Config) StoreEnabled() bool {
	return c.Database.Path != ""
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	store := c.Database.Path
	if !c.StoreEnabled() {
		store = "disabled"
	}

	summary := fmt.Sprintf("Server: %s, Store: %s\n", c.Server.Addr, store)
	summary += fmt.Sprintf("Export: %s at %gx, Editable: %v", c.Export.Dir, c.Export.RasterScale, c.Viewer.Editable)
	if c.Templates.Dir != "" {
		summary += fmt.Sprintf("\nTemplates: %s", c.Templates.Dir)
	}

	return summary
}
