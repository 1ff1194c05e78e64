package domain

// TopologyKind identifies a topology family and its template
type TopologyKind string

const (
	TopologyFiber TopologyKind = "fiber"
	TopologyRadio TopologyKind = "radio"
	TopologyWifi  TopologyKind = "wifi"
	TopologySDWAN TopologyKind = "sdwan"
)

// Layout algorithm names a template may request
const (
	LayoutLinear      = "linear"
	LayoutStar        = "star"
	LayoutHubAndSpoke = "hubAndSpoke"
)

// TemplateLayout holds the canvas geometry of a template
type TemplateLayout struct {
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	Padding   float64 `json:"padding" yaml:"padding"`
	Algorithm string  `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

// DeviceArchetype is a device prototype expanded N times by its quantity key
type DeviceArchetype struct {
	ArchetypeID string     `json:"archetypeId" yaml:"archetypeId"`
	Label       string     `json:"label" yaml:"label"`
	DeviceType  DeviceType `json:"deviceType" yaml:"deviceType"`
	QuantityKey string     `json:"quantityKey" yaml:"quantityKey"`
}

// ConnectionRule wires the first instance of one archetype to the first
// instance of another
type ConnectionRule struct {
	FromArchetypeID string         `json:"fromArchetypeId" yaml:"fromArchetypeId"`
	ToArchetypeID   string         `json:"toArchetypeId" yaml:"toArchetypeId"`
	Kind            ConnectionKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label           string         `json:"label,omitempty" yaml:"label,omitempty"`
}

// Template is the immutable declaration of one topology family
type Template struct {
	Kind             TopologyKind      `json:"kind" yaml:"kind"`
	Title            string            `json:"title" yaml:"title"`
	DefaultKind      ConnectionKind    `json:"defaultConnectionKind,omitempty" yaml:"defaultConnectionKind,omitempty"`
	Layout           TemplateLayout    `json:"layout" yaml:"layout"`
	DeviceArchetypes []DeviceArchetype `json:"deviceArchetypes" yaml:"deviceArchetypes"`
	ConnectionRules  []ConnectionRule  `json:"connectionRules" yaml:"connectionRules"`
}

// Archetype returns the archetype with the given ID
func (t *Template) Archetype(id string) (DeviceArchetype, bool) {
	for _, a := range t.DeviceArchetypes {
		if a.ArchetypeID == id {
			return a, true
		}
	}
	return DeviceArchetype{}, false
}

// QuantityKeys returns the distinct quantity keys in archetype order
func (t *Template) QuantityKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, a := range t.DeviceArchetypes {
		if !seen[a.QuantityKey] {
			seen[a.QuantityKey] = true
			keys = append(keys, a.QuantityKey)
		}
	}
	return keys
}
