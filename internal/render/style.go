package render

import "topodiagram/internal/domain"

// Stroke is a fully resolved connection stroke
type Stroke struct {
	Color string
	Width float64
	Dash  []float64
}

// DefaultStroke is used for connection kinds without a registered style
var DefaultStroke = Stroke{Color: "#9ca3af", Width: 2}

var kindStrokes = map[domain.ConnectionKind]Stroke{
	domain.ConnectionFiber:    {Color: "#f59e0b", Width: 3},
	domain.ConnectionEthernet: {Color: "#2563eb", Width: 2},
	domain.ConnectionWireless: {Color: "#10b981", Width: 2, Dash: []float64{6, 4}},
	domain.ConnectionWAN:      {Color: "#7c3aed", Width: 3},
	domain.ConnectionVPN:      {Color: "#dc2626", Width: 2, Dash: []float64{4, 4}},
}

// StrokeFor returns the default stroke of kind with any non-zero field of
// override applied on top
func StrokeFor(kind domain.ConnectionKind, override *domain.Style) Stroke {
	s, ok := kindStrokes[kind]
	if !ok {
		s = DefaultStroke
	}
	s.Dash = append([]float64(nil), s.Dash...)

	if override == nil {
		return s
	}
	if override.Color != "" {
		s.Color = override.Color
	}
	if override.StrokeWidth > 0 {
		s.Width = override.StrokeWidth
	}
	if len(override.DashPattern) > 0 {
		s.Dash = append([]float64(nil), override.DashPattern...)
	}
	return s
}

// DefaultIcon and DefaultColor are used for device types without a
// registered glyph
const (
	DefaultIcon  = "?"
	DefaultColor = "#6b7280"
)

type deviceStyle struct {
	icon  string
	color string
}

var deviceStyles = map[domain.DeviceType]deviceStyle{
	domain.DeviceTypeOLT:              {"OLT", "#1e3a8a"},
	domain.DeviceTypeONT:              {"ONT", "#3b82f6"},
	domain.DeviceTypeRouter:           {"RTR", "#0f766e"},
	domain.DeviceTypeSwitch:           {"SW", "#0891b2"},
	domain.DeviceTypeAccessPoint:      {"AP", "#16a34a"},
	domain.DeviceTypeController:       {"WLC", "#15803d"},
	domain.DeviceTypeTower:            {"TWR", "#a16207"},
	domain.DeviceTypeAntenna:          {"ANT", "#ca8a04"},
	domain.DeviceTypeApplianceGateway: {"SDW", "#7c3aed"},
	domain.DeviceTypeCloudGateway:     {"CLD", "#6366f1"},
	domain.DeviceTypeSplitter:         {"SPL", "#ea580c"},
	domain.DeviceTypeClient:           {"CLI", "#64748b"},
	domain.DeviceTypeWANLink:          {"WAN", "#9333ea"},
}

// IconFor returns the glyph drawn for a device, honoring its icon override
func IconFor(d *domain.Device) string {
	if d.Icon != "" {
		return d.Icon
	}
	if s, ok := deviceStyles[d.Type]; ok {
		return s.icon
	}
	return DefaultIcon
}

// ColorFor returns the accent color of a device type
func ColorFor(t domain.DeviceType) string {
	if s, ok := deviceStyles[t]; ok {
		return s.color
	}
	return DefaultColor
}

var statusColors = map[domain.DeviceStatus]string{
	domain.DeviceStatusOnline:  "#22c55e",
	domain.DeviceStatusWarning: "#f59e0b",
	domain.DeviceStatusOffline: "#ef4444",
}

// StatusColor returns the indicator color for a status, grey when unknown
func StatusColor(s domain.DeviceStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#9ca3af"
}
