package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"topodiagram/internal/domain"
)

// JSONCodec reads survey files and writes diagram graphs as JSON
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns "json"
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse decodes one survey and checks that it names a topology kind
func (c *JSONCodec) Parse(r io.Reader) (*domain.TopologyConfig, error) {
	var cfg domain.TopologyConfig
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Export writes the devices and connections of graph, indented
func (c *JSONCodec) Export(graph *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(graph); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
