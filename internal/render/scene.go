// Package render turns devices, connections and a view into a drawable
// scene, and draws scenes as SVG markup or raster images.
package render

import (
	"topodiagram/internal/domain"
	"topodiagram/internal/geom"
)

// Device footprint and affordance geometry, in template-local units
const (
	DeviceWidth      = 90.0
	DeviceHeight     = 60.0
	DeviceRadius     = 8.0
	AffordanceRadius = 8.0
	StatusRadius     = 5.0

	// CurveLift is how far the control point of an arced connection sits
	// above the straight-line midpoint
	CurveLift = 20.0
)

var (
	editOffset   = domain.Point{X: 27, Y: -30}
	deleteOffset = domain.Point{X: 45, Y: -30}
	statusOffset = domain.Point{X: -35, Y: -20}
)

// Affordance actions
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Shape of a connection path
type Shape string

const (
	ShapeLine Shape = "line"
	ShapeQuad Shape = "quad"
)

// Rect is an axis-aligned rectangle with optional corner radius
type Rect struct {
	X, Y, W, H float64
	Radius     float64
}

// Contains reports whether p lies inside the rectangle, edges included
func (r Rect) Contains(p domain.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the middle of the rectangle
func (r Rect) Center() domain.Point {
	return domain.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Chip is a rounded label background centered on a point
type Chip struct {
	Text   string
	Center domain.Point
	Box    Rect
}

// Path is one drawable connection
type Path struct {
	ConnectionID string
	Kind         domain.ConnectionKind
	Shape        Shape
	From         domain.Point
	To           domain.Point
	Control      domain.Point
	Stroke       Stroke
	Label        *Chip
}

// Midpoint returns the point halfway along the path.
// For curves this is the curve point at t = 0.5.
func (p Path) Midpoint() domain.Point {
	if p.Shape != ShapeQuad {
		return p.From.Midpoint(p.To)
	}
	return domain.Point{
		X: 0.25*p.From.X + 0.5*p.Control.X + 0.25*p.To.X,
		Y: 0.25*p.From.Y + 0.5*p.Control.Y + 0.25*p.To.Y,
	}
}

// Affordance is a small circular control layered above a device body
type Affordance struct {
	Action string
	Center domain.Point
	Radius float64
	Glyph  string
}

// Contains reports whether p falls on the control
func (a Affordance) Contains(p domain.Point) bool {
	return a.Center.DistanceTo(p) <= a.Radius
}

// Node is one drawable device
type Node struct {
	DeviceID    string
	Type        domain.DeviceType
	Label       string
	Tag         string
	Icon        string
	Color       string
	Position    domain.Point
	Body        Rect
	Status      domain.DeviceStatus
	StatusColor string
	StatusDot   domain.Point
	Affordances []Affordance
}

// View is the pan and zoom applied to the rendering surface
type View struct {
	Scale float64
	Pan   domain.Point
}

// Transform returns the affine matrix of the view
func (v View) Transform() geom.Affine {
	return geom.ViewTransform(v.Scale, v.Pan)
}

// Options control scene construction
type Options struct {
	Width    float64
	Height   float64
	Editable bool
}

// Scene is everything needed to draw one frame of the rendering surface.
// Coordinates are template-local; View maps them to the surface.
type Scene struct {
	Width  float64
	Height float64
	View   View
	Paths  []Path
	Nodes  []Node
	Kinds  []domain.ConnectionKind
}

// Body returns the device footprint centered on pos
func Body(pos domain.Point) Rect {
	return Rect{
		X:      pos.X - DeviceWidth/2,
		Y:      pos.Y - DeviceHeight/2,
		W:      DeviceWidth,
		H:      DeviceHeight,
		Radius: DeviceRadius,
	}
}

// Affordances returns the edit and delete controls of a device at pos
func Affordances(pos domain.Point) []Affordance {
	return []Affordance{
		{Action: ActionEdit, Center: pos.Add(editOffset), Radius: AffordanceRadius, Glyph: "E"},
		{Action: ActionDelete, Center: pos.Add(deleteOffset), Radius: AffordanceRadius, Glyph: "X"},
	}
}

// Render builds the scene for one frame. Connections with an endpoint that
// matches no device are skipped.
func Render(devices []domain.Device, connections []domain.Connection, view View, opts Options) Scene {
	scene := Scene{
		Width:  opts.Width,
		Height: opts.Height,
		View:   view,
		Paths:  make([]Path, 0, len(connections)),
		Nodes:  make([]Node, 0, len(devices)),
	}

	idx := domain.DeviceIndex(devices)
	seen := make(map[domain.ConnectionKind]bool)
	var extra []domain.ConnectionKind

	for _, c := range connections {
		fi, okFrom := idx[c.From]
		ti, okTo := idx[c.To]
		if !okFrom || !okTo {
			continue
		}
		scene.Paths = append(scene.Paths, connectionPath(c, devices[fi].Position, devices[ti].Position))

		if !seen[c.Kind] {
			seen[c.Kind] = true
			if !c.Kind.Known() {
				extra = append(extra, c.Kind)
			}
		}
	}

	for _, k := range domain.ConnectionKinds {
		if seen[k] {
			scene.Kinds = append(scene.Kinds, k)
		}
	}
	scene.Kinds = append(scene.Kinds, extra...)

	for i := range devices {
		scene.Nodes = append(scene.Nodes, deviceNode(&devices[i], opts.Editable))
	}
	return scene
}

func connectionPath(c domain.Connection, from, to domain.Point) Path {
	p := Path{
		ConnectionID: c.ID,
		Kind:         c.Kind,
		Shape:        ShapeLine,
		From:         from,
		To:           to,
		Stroke:       StrokeFor(c.Kind, c.Style),
	}
	if c.Kind.Curved() {
		mid := from.Midpoint(to)
		p.Shape = ShapeQuad
		p.Control = domain.Point{X: mid.X, Y: mid.Y - CurveLift}
	}
	if c.Label != "" {
		p.Label = labelChip(c.Label, p.Midpoint())
	}
	return p
}

func labelChip(text string, center domain.Point) *Chip {
	w := float64(len([]rune(text)))*6 + 12
	h := 16.0
	return &Chip{
		Text:   text,
		Center: center,
		Box:    Rect{X: center.X - w/2, Y: center.Y - h/2, W: w, H: h, Radius: 4},
	}
}

func deviceNode(d *domain.Device, editable bool) Node {
	tag := string(d.Type)
	if tag == "" {
		tag = "device"
	}
	status := d.Status()

	n := Node{
		DeviceID:    d.ID,
		Type:        d.Type,
		Label:       d.Label,
		Tag:         tag,
		Icon:        IconFor(d),
		Color:       ColorFor(d.Type),
		Position:    d.Position,
		Body:        Body(d.Position),
		Status:      status,
		StatusColor: StatusColor(status),
		StatusDot:   d.Position.Add(statusOffset),
	}
	if editable {
		n.Affordances = Affordances(d.Position)
	}
	return n
}
