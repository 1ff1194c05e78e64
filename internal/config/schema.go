package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Export    ExportConfig    `yaml:"export"`
	Templates TemplatesConfig `yaml:"templates"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds session store settings. An empty path disables the
// store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds export pipeline settings
type ExportConfig struct {
	Dir         string  `yaml:"dir"`
	RasterScale float64 `yaml:"raster_scale"`
}

// TemplatesConfig names an optional directory of extra or replacement
// templates
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// ViewerConfig holds interactive viewer settings
type ViewerConfig struct {
	Editable bool `yaml:"editable"`
}

// WatchConfig holds survey file watcher settings
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
