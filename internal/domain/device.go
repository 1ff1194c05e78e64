package domain

// DeviceType represents the kind of equipment a device stands for
type DeviceType string

const (
	DeviceTypeOLT              DeviceType = "olt"
	DeviceTypeONT              DeviceType = "ont"
	DeviceTypeRouter           DeviceType = "router"
	DeviceTypeSwitch           DeviceType = "switch"
	DeviceTypeAccessPoint      DeviceType = "accessPoint"
	DeviceTypeController       DeviceType = "controller"
	DeviceTypeTower            DeviceType = "tower"
	DeviceTypeAntenna          DeviceType = "antenna"
	DeviceTypeApplianceGateway DeviceType = "applianceGateway"
	DeviceTypeCloudGateway     DeviceType = "cloudGateway"
	DeviceTypeSplitter         DeviceType = "splitter"
	DeviceTypeClient           DeviceType = "client"
	DeviceTypeWANLink          DeviceType = "wanLink"
)

// DeviceTypes lists every known device type in display order
var DeviceTypes = []DeviceType{
	DeviceTypeOLT,
	DeviceTypeONT,
	DeviceTypeRouter,
	DeviceTypeSwitch,
	DeviceTypeAccessPoint,
	DeviceTypeController,
	DeviceTypeTower,
	DeviceTypeAntenna,
	DeviceTypeApplianceGateway,
	DeviceTypeCloudGateway,
	DeviceTypeSplitter,
	DeviceTypeClient,
	DeviceTypeWANLink,
}

// Known reports whether t is one of the declared device types
func (t DeviceType) Known() bool {
	for _, known := range DeviceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DeviceStatus is the operational state shown by the status indicator
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusWarning DeviceStatus = "warning"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusUnknown DeviceStatus = "unknown"
)

// PropertyStatus is the property key holding a device's status
const PropertyStatus = "status"

// Device represents a piece of equipment on the diagram
type Device struct {
	ID         string         `json:"id" yaml:"id"`
	Type       DeviceType     `json:"type" yaml:"type"`
	Label      string         `json:"label" yaml:"label"`
	Position   Point          `json:"position" yaml:"position"`
	Icon       string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewDevice creates a device at the origin with initialized properties
func NewDevice(id string, deviceType DeviceType, label string) *Device {
	return &Device{
		ID:         id,
		Type:       deviceType,
		Label:      label,
		Properties: make(map[string]any),
	}
}

// SetProperty sets a property value
func (d *Device) SetProperty(key string, value any) {
	if d.Properties == nil {
		d.Properties = make(map[string]any)
	}
	d.Properties[key] = value
}

// GetProperty gets a property value
func (d *Device) GetProperty(key string) (any, bool) {
	if d.Properties == nil {
		return nil, false
	}
	val, ok := d.Properties[key]
	return val, ok
}

// GetPropertyString gets a property as a string
func (d *Device) GetPropertyString(key string) string {
	val, ok := d.GetProperty(key)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// Status returns the device status, DeviceStatusUnknown when unset or unrecognized
func (d *Device) Status() DeviceStatus {
	switch s := DeviceStatus(d.GetPropertyString(PropertyStatus)); s {
	case DeviceStatusOnline, DeviceStatusWarning, DeviceStatusOffline:
		return s
	}
	return DeviceStatusUnknown
}

// Clone returns a copy of the device that shares nothing with the original
func (d Device) Clone() Device {
	if d.Properties != nil {
		props := make(map[string]any, len(d.Properties))
		for k, v := range d.Properties {
			props[k] = v
		}
		d.Properties = props
	}
	return d
}
