package domain

// TopologyConfig is the survey form output that drives instantiation.
// It is read-only for the lifetime of a survey session.
type TopologyConfig struct {
	Kind         TopologyKind   `json:"kind" yaml:"kind"`
	CustomerName string         `json:"customerName" yaml:"customerName"`
	Address      string         `json:"address,omitempty" yaml:"address,omitempty"`
	Quantities   map[string]int `json:"quantities" yaml:"quantities"`
}

// Quantity returns the quantity for key; absent or negative means zero
func (c *TopologyConfig) Quantity(key string) int {
	if c == nil || c.Quantities == nil {
		return 0
	}
	if n := c.Quantities[key]; n > 0 {
		return n
	}
	return 0
}
