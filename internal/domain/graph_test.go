package domain

import "testing"

func TestNewGraph(t *testing.T) {
	t.Run("creates empty graph with initialized collections", func(t *testing.T) {
		graph := NewGraph()

		if graph.Devices == nil || len(graph.Devices) != 0 {
			t.Errorf("expected empty Devices slice, got %v", graph.Devices)
		}
		if graph.Connections == nil || len(graph.Connections) != 0 {
			t.Errorf("expected empty Connections slice, got %v", graph.Connections)
		}
	})
}

func TestGraphDevice(t *testing.T) {
	graph := NewGraph()
	graph.AddDevice(*NewDevice("olt-0", DeviceTypeOLT, "OLT 1"))
	graph.AddDevice(*NewDevice("onu-0", DeviceTypeONT, "ONU 1"))

	t.Run("finds existing device by ID", func(t *testing.T) {
		dev := graph.Device("onu-0")
		if dev == nil {
			t.Fatal("expected device to be found")
		}
		if dev.Label != "ONU 1" {
			t.Errorf("expected label 'ONU 1', got %s", dev.Label)
		}
	})

	t.Run("returned pointer aliases the graph", func(t *testing.T) {
		graph.Device("olt-0").Position = Point{X: 5, Y: 6}
		if graph.Devices[0].Position != (Point{X: 5, Y: 6}) {
			t.Error("expected position write to reach the graph")
		}
	})

	t.Run("missing device returns nil", func(t *testing.T) {
		if graph.Device("nope") != nil {
			t.Error("expected nil for missing device")
		}
	})
}

func TestGraphDangling(t *testing.T) {
	graph := NewGraph()
	graph.AddDevice(*NewDevice("a", DeviceTypeRouter, "A"))
	graph.AddDevice(*NewDevice("b", DeviceTypeSwitch, "B"))
	graph.AddConnection(Connection{ID: "ok", From: "a", To: "b", Kind: ConnectionEthernet})
	graph.AddConnection(Connection{ID: "bad", From: "a", To: "ghost", Kind: ConnectionEthernet})

	dangling := graph.Dangling()
	if len(dangling) != 1 || dangling[0].ID != "bad" {
		t.Errorf("expected only 'bad' to dangle, got %v", dangling)
	}
}

func TestGraphClone(t *testing.T) {
	graph := NewGraph()
	dev := NewDevice("a", DeviceTypeRouter, "A")
	dev.SetProperty("status", "online")
	graph.AddDevice(*dev)
	graph.AddConnection(Connection{ID: "c", From: "a", To: "a"})

	clone := graph.Clone()
	clone.Devices[0].Label = "changed"
	clone.Devices[0].SetProperty("status", "offline")
	clone.Connections[0].Label = "changed"

	if graph.Devices[0].Label != "A" {
		t.Error("expected original device label to be untouched")
	}
	if graph.Devices[0].GetPropertyString("status") != "online" {
		t.Error("expected original device properties to be untouched")
	}
	if graph.Connections[0].Label != "" {
		t.Error("expected original connection to be untouched")
	}
}

func TestDeviceIndexFirstOccurrenceWins(t *testing.T) {
	devices := []Device{{ID: "x"}, {ID: "y"}, {ID: "x"}}
	idx := DeviceIndex(devices)
	if idx["x"] != 0 || idx["y"] != 1 {
		t.Errorf("unexpected index %v", idx)
	}
}

func TestTopologyConfigQuantity(t *testing.T) {
	cfg := &TopologyConfig{Quantities: map[string]int{"routers": 2, "bogus": -3}}

	tests := []struct {
		key  string
		want int
	}{
		{"routers", 2},
		{"bogus", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := cfg.Quantity(tt.key); got != tt.want {
			t.Errorf("Quantity(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}

	var nilCfg *TopologyConfig
	if nilCfg.Quantity("routers") != 0 {
		t.Error("expected nil config to yield zero")
	}
}

func TestTemplateQuantityKeys(t *testing.T) {
	tmpl := &Template{DeviceArchetypes: []DeviceArchetype{
		{ArchetypeID: "a", QuantityKey: "routers"},
		{ArchetypeID: "b", QuantityKey: "switches"},
		{ArchetypeID: "c", QuantityKey: "routers"},
	}}

	keys := tmpl.QuantityKeys()
	if len(keys) != 2 || keys[0] != "routers" || keys[1] != "switches" {
		t.Errorf("unexpected keys %v", keys)
	}
	if _, ok := tmpl.Archetype("b"); !ok {
		t.Error("expected archetype b to be found")
	}
	if _, ok := tmpl.Archetype("z"); ok {
		t.Error("expected archetype z to be missing")
	}
}

func TestConnectionKindCurved(t *testing.T) {
	curved := map[ConnectionKind]bool{
		ConnectionFiber:    false,
		ConnectionEthernet: false,
		ConnectionWAN:      false,
		ConnectionWireless: true,
		ConnectionVPN:      true,
	}
	for kind, want := range curved {
		if got := kind.Curved(); got != want {
			t.Errorf("%s.Curved() = %v, want %v", kind, got, want)
		}
	}
}
