package codec

import (
	"fmt"
	"io"

	"topodiagram/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec reads survey files and writes diagram graphs as YAML
type YAMLCodec struct{}

func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns "yaml"
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse decodes one survey and checks that it names a topology kind
func (c *YAMLCodec) Parse(r io.Reader) (*domain.TopologyConfig, error) {
	var cfg domain.TopologyConfig
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Export writes the devices and connections of graph, indented
func (c *YAMLCodec) Export(graph *domain.Graph, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(graph); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
