// Package layout computes 2-D positions for an ordered device list.
//
// Every algorithm is pure and deterministic: it returns a positioned copy of
// its input and never mutates the caller's slice.
package layout

import (
	"math"

	"topodiagram/internal/domain"
)

// Geometry is the canvas an algorithm lays devices out on
type Geometry struct {
	Width   float64
	Height  float64
	Padding float64
}

// GeometryOf returns the canvas geometry declared by a template
func GeometryOf(l domain.TemplateLayout) Geometry {
	return Geometry{Width: l.Width, Height: l.Height, Padding: l.Padding}
}

// Center returns the canvas center
func (g Geometry) Center() domain.Point {
	return domain.Point{X: g.Width / 2, Y: g.Height / 2}
}

// Radius returns the orbit radius used by the circular layouts
func (g Geometry) Radius() float64 {
	return math.Min(g.Width, g.Height) / 3
}

// Func maps devices and canvas geometry to positioned devices
type Func func(devices []domain.Device, g Geometry) []domain.Device

// HubTypes are placed at the center by HubAndSpoke
var HubTypes = map[domain.DeviceType]bool{
	domain.DeviceTypeController: true,
}

// Quick-add placement for devices inserted outside the template flow
var (
	QuickAddOrigin  = domain.Point{X: 100, Y: 100}
	QuickAddCascade = 20.0
)

// ByName returns the algorithm registered under name, Linear when unknown
func ByName(name string) Func {
	switch name {
	case domain.LayoutStar:
		return Star
	case domain.LayoutHubAndSpoke:
		return HubAndSpoke
	default:
		return Linear
	}
}

// Linear places devices evenly on the horizontal midline from padding to
// width-padding. A single device sits at (padding, height/2).
func Linear(devices []domain.Device, g Geometry) []domain.Device {
	out := clone(devices)
	n := len(out)
	y := g.Height / 2

	if n < 2 {
		if n == 1 {
			out[0].Position = domain.Point{X: g.Padding, Y: y}
		}
		return out
	}

	step := (g.Width - 2*g.Padding) / float64(n-1)
	for i := range out {
		out[i].Position = domain.Point{X: g.Padding + float64(i)*step, Y: y}
	}
	// The last device lands on width-padding exactly.
	out[n-1].Position.X = g.Width - g.Padding
	return out
}

// Star places the first device at the center and the rest on a circle of
// radius min(width,height)/3 at angles 2πi/(n-1).
func Star(devices []domain.Device, g Geometry) []domain.Device {
	out := clone(devices)
	if len(out) == 0 {
		return out
	}

	center := g.Center()
	out[0].Position = center
	placeOnOrbit(out[1:], center, g.Radius())
	return out
}

// HubAndSpoke places every hub-type device at the center and the remaining
// devices evenly on the orbit, spaced by their index among non-hubs.
// Several hubs collapse onto the same point.
func HubAndSpoke(devices []domain.Device, g Geometry) []domain.Device {
	out := clone(devices)
	center := g.Center()

	spokes := make([]int, 0, len(out))
	for i := range out {
		if HubTypes[out[i].Type] {
			out[i].Position = center
			continue
		}
		spokes = append(spokes, i)
	}

	radius := g.Radius()
	for k, i := range spokes {
		out[i].Position = orbitPoint(center, radius, k, len(spokes))
	}
	return out
}

// QuickAddPosition returns the fixed default spot for the k-th device added
// outside the template flow (k counts from zero)
func QuickAddPosition(k int) domain.Point {
	offset := float64(k) * QuickAddCascade
	return domain.Point{X: QuickAddOrigin.X + offset, Y: QuickAddOrigin.Y + offset}
}

func placeOnOrbit(devices []domain.Device, center domain.Point, radius float64) {
	for i := range devices {
		devices[i].Position = orbitPoint(center, radius, i, len(devices))
	}
}

func orbitPoint(center domain.Point, radius float64, i, count int) domain.Point {
	theta := 2 * math.Pi * float64(i) / float64(count)
	return domain.Point{
		X: center.X + radius*math.Cos(theta),
		Y: center.Y + radius*math.Sin(theta),
	}
}

func clone(devices []domain.Device) []domain.Device {
	out := make([]domain.Device, len(devices))
	for i, d := range devices {
		out[i] = d.Clone()
	}
	return out
}
