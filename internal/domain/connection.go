package domain

// ConnectionKind represents the physical or logical medium of a link
type ConnectionKind string

const (
	ConnectionFiber    ConnectionKind = "fiber"
	ConnectionEthernet ConnectionKind = "ethernet"
	ConnectionWireless ConnectionKind = "wireless"
	ConnectionWAN      ConnectionKind = "wan"
	ConnectionVPN      ConnectionKind = "vpn"
)

// ConnectionKinds lists every known connection kind in legend order
var ConnectionKinds = []ConnectionKind{
	ConnectionFiber,
	ConnectionEthernet,
	ConnectionWireless,
	ConnectionWAN,
	ConnectionVPN,
}

// Known reports whether k is one of the declared connection kinds
func (k ConnectionKind) Known() bool {
	for _, known := range ConnectionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Curved reports whether links of this kind are drawn as arcs.
// Wireless and VPN links are not physical cables.
func (k ConnectionKind) Curved() bool {
	return k == ConnectionWireless || k == ConnectionVPN
}

// Style overrides the default stroke of a connection.
// Zero fields fall back to the per-kind default.
type Style struct {
	Color       string    `json:"color,omitempty" yaml:"color,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	DashPattern []float64 `json:"dashPattern,omitempty" yaml:"dashPattern,omitempty"`
}

// Connection represents a link between two devices
type Connection struct {
	ID    string         `json:"id" yaml:"id"`
	From  string         `json:"from" yaml:"from"`
	To    string         `json:"to" yaml:"to"`
	Kind  ConnectionKind `json:"kind" yaml:"kind"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty"`
	Style *Style         `json:"style,omitempty" yaml:"style,omitempty"`
}

// Involves checks if this connection touches the given device ID
func (c *Connection) Involves(deviceID string) bool {
	return c.From == deviceID || c.To == deviceID
}

// OtherEnd returns the device ID on the other end of this connection
func (c *Connection) OtherEnd(deviceID string) string {
	if c.From == deviceID {
		return c.To
	}
	return c.From
}
