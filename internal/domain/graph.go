package domain

// Graph is an instantiated diagram
type Graph struct {
	Devices     []Device     `json:"devices" yaml:"devices"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// NewGraph creates an empty graph with initialized collections
func NewGraph() *Graph {
	return &Graph{
		Devices:     make([]Device, 0),
		Connections: make([]Connection, 0),
	}
}

// AddDevice adds a device to the graph
func (g *Graph) AddDevice(device Device) {
	g.Devices = append(g.Devices, device)
}

// AddConnection adds a connection to the graph
func (g *Graph) AddConnection(conn Connection) {
	g.Connections = append(g.Connections, conn)
}

// Device returns a pointer to the device with the given ID, or nil
func (g *Graph) Device(id string) *Device {
	for i := range g.Devices {
		if g.Devices[i].ID == id {
			return &g.Devices[i]
		}
	}
	return nil
}

// DeviceIndex maps device IDs to their index in Devices.
// The first occurrence wins if IDs repeat.
func DeviceIndex(devices []Device) map[string]int {
	idx := make(map[string]int, len(devices))
	for i, d := range devices {
		if _, exists := idx[d.ID]; !exists {
			idx[d.ID] = i
		}
	}
	return idx
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Devices:     make([]Device, len(g.Devices)),
		Connections: make([]Connection, len(g.Connections)),
	}
	for i, d := range g.Devices {
		out.Devices[i] = d.Clone()
	}
	copy(out.Connections, g.Connections)
	return out
}

// Dangling returns the connections whose endpoints do not both resolve
func (g *Graph) Dangling() []Connection {
	idx := DeviceIndex(g.Devices)
	var out []Connection
	for _, c := range g.Connections {
		_, fromOK := idx[c.From]
		_, toOK := idx[c.To]
		if !fromOK || !toOK {
			out = append(out, c)
		}
	}
	return out
}
