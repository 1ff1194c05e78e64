package template

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"topodiagram/internal/domain"
)

func builtin(t *testing.T) *Catalog {
	t.Helper()
	c, err := Builtin()
	if err != nil {
		t.Fatalf("failed to load builtin catalog: %v", err)
	}
	return c
}

func ids(devices []domain.Device) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.ID
	}
	return out
}

func TestInstantiateFiberScenario(t *testing.T) {
	tmpl, err := builtin(t).Get(domain.TopologyFiber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	devices, connections := Instantiate(&tmpl, map[string]int{"routers": 2, "switches": 1, "antennas": 3})

	wantIDs := "olt-0,olt-1,splitter-0,onu-0,onu-1,onu-2"
	if got := strings.Join(ids(devices), ","); got != wantIDs {
		t.Errorf("expected devices %s, got %s", wantIDs, got)
	}

	if len(connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(connections))
	}
	wantEdges := [][2]string{{"olt-0", "splitter-0"}, {"splitter-0", "onu-0"}}
	for i, w := range wantEdges {
		if connections[i].From != w[0] || connections[i].To != w[1] {
			t.Errorf("connection %d: expected %s->%s, got %s->%s", i, w[0], w[1], connections[i].From, connections[i].To)
		}
		if connections[i].Kind != domain.ConnectionFiber {
			t.Errorf("connection %d: expected fiber kind, got %s", i, connections[i].Kind)
		}
	}

	if devices[1].Label != "OLT 2" {
		t.Errorf("expected label 'OLT 2', got %q", devices[1].Label)
	}
	if devices[3].Type != domain.DeviceTypeONT {
		t.Errorf("expected onu devices to be of type ont, got %s", devices[3].Type)
	}
}

func TestInstantiateCounts(t *testing.T) {
	tmpl := domain.Template{
		Kind: "test",
		DeviceArchetypes: []domain.DeviceArchetype{
			{ArchetypeID: "a", Label: "A", DeviceType: domain.DeviceTypeRouter, QuantityKey: "x"},
			{ArchetypeID: "b", Label: "B", DeviceType: domain.DeviceTypeSwitch, QuantityKey: "y"},
			{ArchetypeID: "c", Label: "C", DeviceType: domain.DeviceTypeClient, QuantityKey: "x"},
		},
		ConnectionRules: []domain.ConnectionRule{
			{FromArchetypeID: "a", ToArchetypeID: "b"},
			{FromArchetypeID: "b", ToArchetypeID: "c"},
			{FromArchetypeID: "a", ToArchetypeID: "c"},
		},
	}

	quantities := []map[string]int{
		{},
		{"x": 1},
		{"x": 3, "y": 2},
		{"x": 5, "y": 0, "unused": 9},
	}

	for _, q := range quantities {
		t.Run(fmt.Sprint(q), func(t *testing.T) {
			devices, connections := Instantiate(&tmpl, q)

			want := 0
			for _, a := range tmpl.DeviceArchetypes {
				want += q[a.QuantityKey]
			}
			if len(devices) != want {
				t.Errorf("expected %d devices, got %d", want, len(devices))
			}

			seen := make(map[string]bool)
			for _, d := range devices {
				if seen[d.ID] {
					t.Errorf("duplicate device ID %s", d.ID)
				}
				seen[d.ID] = true
			}

			if len(connections) != len(tmpl.ConnectionRules) {
				t.Errorf("expected %d connections, got %d", len(tmpl.ConnectionRules), len(connections))
			}
			for i, c := range connections {
				rule := tmpl.ConnectionRules[i]
				if c.From != rule.FromArchetypeID+"-0" || c.To != rule.ToArchetypeID+"-0" {
					t.Errorf("connection %d: expected index-0 endpoints, got %s->%s", i, c.From, c.To)
				}
			}
		})
	}
}

func TestInstantiateIndexZeroWiringOnly(t *testing.T) {
	tmpl := &domain.Template{
		DeviceArchetypes: []domain.DeviceArchetype{
			{ArchetypeID: "ap", Label: "AP", DeviceType: domain.DeviceTypeAccessPoint, QuantityKey: "aps"},
			{ArchetypeID: "sw", Label: "SW", DeviceType: domain.DeviceTypeSwitch, QuantityKey: "sws"},
		},
		ConnectionRules: []domain.ConnectionRule{{FromArchetypeID: "sw", ToArchetypeID: "ap"}},
	}

	_, connections := Instantiate(tmpl, map[string]int{"aps": 4, "sws": 1})
	for _, c := range connections {
		if c.Involves("ap-1") || c.Involves("ap-2") || c.Involves("ap-3") {
			t.Errorf("expected units past the first to stay unconnected, got %+v", c)
		}
	}
}

func TestInstantiateEdgeCases(t *testing.T) {
	t.Run("negative quantity omits the archetype", func(t *testing.T) {
		tmpl := &domain.Template{DeviceArchetypes: []domain.DeviceArchetype{
			{ArchetypeID: "a", Label: "A", QuantityKey: "n"},
		}}
		devices, _ := Instantiate(tmpl, map[string]int{"n": -2})
		if len(devices) != 0 {
			t.Errorf("expected no devices, got %d", len(devices))
		}
	})

	t.Run("nil quantities yield no devices but every connection", func(t *testing.T) {
		tmpl := &domain.Template{
			DeviceArchetypes: []domain.DeviceArchetype{{ArchetypeID: "a", Label: "A", QuantityKey: "n"}},
			ConnectionRules:  []domain.ConnectionRule{{FromArchetypeID: "a", ToArchetypeID: "a"}},
		}
		devices, connections := Instantiate(tmpl, nil)
		if len(devices) != 0 || len(connections) != 1 {
			t.Errorf("expected 0 devices and 1 connection, got %d and %d", len(devices), len(connections))
		}
	})

	t.Run("unknown device type passes through", func(t *testing.T) {
		tmpl := &domain.Template{DeviceArchetypes: []domain.DeviceArchetype{
			{ArchetypeID: "m", Label: "Mainframe", DeviceType: "mainframe", QuantityKey: "n"},
		}}
		devices, _ := Instantiate(tmpl, map[string]int{"n": 1})
		if devices[0].Type != "mainframe" {
			t.Errorf("expected type to pass through, got %s", devices[0].Type)
		}
	})

	t.Run("repeated rules get distinct connection IDs", func(t *testing.T) {
		tmpl := &domain.Template{ConnectionRules: []domain.ConnectionRule{
			{FromArchetypeID: "a", ToArchetypeID: "b"},
			{FromArchetypeID: "a", ToArchetypeID: "b"},
		}}
		_, connections := Instantiate(tmpl, nil)
		if connections[0].ID == connections[1].ID {
			t.Errorf("expected distinct IDs, both are %s", connections[0].ID)
		}
	})

	t.Run("rule kind falls back to template default then ethernet", func(t *testing.T) {
		tmpl := &domain.Template{
			DefaultKind: domain.ConnectionWAN,
			ConnectionRules: []domain.ConnectionRule{
				{FromArchetypeID: "a", ToArchetypeID: "b", Kind: domain.ConnectionVPN},
				{FromArchetypeID: "a", ToArchetypeID: "c"},
			},
		}
		_, connections := Instantiate(tmpl, nil)
		if connections[0].Kind != domain.ConnectionVPN || connections[1].Kind != domain.ConnectionWAN {
			t.Errorf("unexpected kinds %s, %s", connections[0].Kind, connections[1].Kind)
		}

		tmpl.DefaultKind = ""
		_, connections = Instantiate(tmpl, nil)
		if connections[1].Kind != domain.ConnectionEthernet {
			t.Errorf("expected ethernet fallback, got %s", connections[1].Kind)
		}
	})
}

func TestCatalogBuild(t *testing.T) {
	c := builtin(t)

	t.Run("builds and lays out a wifi diagram", func(t *testing.T) {
		inst, err := c.Build(domain.TopologyConfig{
			Kind:         domain.TopologyWifi,
			CustomerName: "Acme",
			Quantities:   map[string]int{"controllers": 1, "accessPoints": 3, "switches": 1},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inst.Graph.Devices) != 5 {
			t.Fatalf("expected 5 devices, got %d", len(inst.Graph.Devices))
		}
		ctrl := inst.Graph.Device("controller-0")
		want := domain.Point{X: inst.Template.Layout.Width / 2, Y: inst.Template.Layout.Height / 2}
		if ctrl == nil || ctrl.Position != want {
			t.Errorf("expected controller at center %+v, got %+v", want, ctrl)
		}
	})

	t.Run("config quantities are copied", func(t *testing.T) {
		q := map[string]int{"routers": 1}
		inst, err := c.Build(domain.TopologyConfig{Kind: domain.TopologyFiber, Quantities: q})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inst.Config.Quantities["routers"] = 9
		if q["routers"] != 1 {
			t.Error("expected caller's quantity map to be untouched")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := c.Build(domain.TopologyConfig{Kind: "satellite"})
		if !errors.Is(err, ErrUnknownKind) {
			t.Errorf("expected ErrUnknownKind, got %v", err)
		}
	})
}
