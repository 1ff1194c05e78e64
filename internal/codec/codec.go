// Package codec reads survey configurations and writes live diagrams in
// JSON and YAML.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"topodiagram/internal/domain"
)

// ErrUnsupportedFormat is returned by ForPath and ForFormat for unknown formats
var ErrUnsupportedFormat = errors.New("unsupported codec format")

// Importer interface for importing survey configurations from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.TopologyConfig, error)
	Format() string
}

// Exporter interface for exporting diagram graphs to various formats
type Exporter interface {
	Export(graph *domain.Graph, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ForPath returns the codec matching a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ForFormat(ext)
}

// ReadConfigFile parses the survey configuration at path, choosing the
// codec by extension
func ReadConfigFile(path string) (*domain.TopologyConfig, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open survey: %w", err)
	}
	defer f.Close()

	cfg, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, nil
}

func validateConfig(cfg *domain.TopologyConfig) error {
	if cfg.Kind == "" {
		return fmt.Errorf("topology kind is required")
	}
	if cfg.Quantities == nil {
		cfg.Quantities = make(map[string]int)
	}
	return nil
}
