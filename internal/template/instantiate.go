package template

import (
	"fmt"

	"topodiagram/internal/domain"
	"topodiagram/internal/layout"
)

// Instantiate expands a template's archetypes and connection rules.
//
// Each archetype yields quantities[QuantityKey] devices with IDs
// "{archetypeId}-{i}" and labels "{label} {i+1}"; a missing or negative
// quantity omits the archetype. Each rule yields exactly one connection
// between the index-0 instances of its archetypes, however many instances
// exist, so units past the first are left unconnected.
func Instantiate(t *domain.Template, quantities map[string]int) ([]domain.Device, []domain.Connection) {
	devices := make([]domain.Device, 0)
	for _, a := range t.DeviceArchetypes {
		n := quantities[a.QuantityKey]
		for i := 0; i < n; i++ {
			devices = append(devices, domain.Device{
				ID:         InstanceID(a.ArchetypeID, i),
				Type:       a.DeviceType,
				Label:      fmt.Sprintf("%s %d", a.Label, i+1),
				Properties: map[string]any{"archetype": a.ArchetypeID},
			})
		}
	}

	connections := make([]domain.Connection, 0, len(t.ConnectionRules))
	used := make(map[string]int, len(t.ConnectionRules))
	for _, rule := range t.ConnectionRules {
		from := InstanceID(rule.FromArchetypeID, 0)
		to := InstanceID(rule.ToArchetypeID, 0)

		id := from + "__" + to
		used[id]++
		if used[id] > 1 {
			id = fmt.Sprintf("%s#%d", id, used[id])
		}

		connections = append(connections, domain.Connection{
			ID:    id,
			From:  from,
			To:    to,
			Kind:  ruleKind(t, rule),
			Label: rule.Label,
		})
	}

	return devices, connections
}

// InstanceID returns the device ID of the i-th instance of an archetype
func InstanceID(archetypeID string, i int) string {
	return fmt.Sprintf("%s-%d", archetypeID, i)
}

func ruleKind(t *domain.Template, rule domain.ConnectionRule) domain.ConnectionKind {
	if rule.Kind != "" {
		return rule.Kind
	}
	if t.DefaultKind != "" {
		return t.DefaultKind
	}
	return domain.ConnectionEthernet
}

// Instance is a template expanded for one survey session
type Instance struct {
	Template domain.Template
	Config   domain.TopologyConfig
	Graph    *domain.Graph
}

// Build looks up the template for cfg.Kind, instantiates it with cfg's
// quantities and positions the devices with the template's layout algorithm
func (c *Catalog) Build(cfg domain.TopologyConfig) (*Instance, error) {
	tmpl, err := c.Get(cfg.Kind)
	if err != nil {
		return nil, err
	}

	quantities := make(map[string]int, len(cfg.Quantities))
	for k, v := range cfg.Quantities {
		quantities[k] = v
	}
	cfg.Quantities = quantities

	devices, connections := Instantiate(&tmpl, quantities)
	placed := layout.ByName(tmpl.Layout.Algorithm)(devices, layout.GeometryOf(tmpl.Layout))

	return &Instance{
		Template: tmpl,
		Config:   cfg,
		Graph:    &domain.Graph{Devices: placed, Connections: connections},
	}, nil
}
