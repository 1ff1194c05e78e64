package render

import (
	"strings"

	"topodiagram/internal/domain"
)

// Chrome heights, in template-local units
const (
	HeaderHeight = 56.0
	LegendHeight = 36.0

	legendSpacing = 110.0
	legendSwatch  = 24.0
	chromeMargin  = 16.0
)

// Chrome is the header and legend framing the rendering surface in exports
type Chrome struct {
	Title    string `json:"title"`
	Customer string `json:"customer"`
	Address  string `json:"address,omitempty"`
}

// Subtitle returns the second header line
func (c Chrome) Subtitle() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{c.Customer, c.Address} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " - ")
}

// Container is the rendering surface together with its chrome
type Container struct {
	Chrome Chrome
	Scene  Scene
}

// Size returns the container dimensions
func (c Container) Size() (width, height float64) {
	return c.Scene.Width, HeaderHeight + c.Scene.Height + LegendHeight
}

// LegendItem is one swatch of the legend band
type LegendItem struct {
	Kind   domain.ConnectionKind
	Label  string
	Stroke Stroke
	From   domain.Point
	To     domain.Point
	Text   domain.Point
}

// Legend lays out one swatch per connection kind present in the scene.
// Coordinates are relative to the top of the legend band.
func (c Container) Legend() []LegendItem {
	items := make([]LegendItem, 0, len(c.Scene.Kinds))
	y := LegendHeight / 2
	for i, k := range c.Scene.Kinds {
		x := chromeMargin + float64(i)*legendSpacing
		items = append(items, LegendItem{
			Kind:   k,
			Label:  string(k),
			Stroke: StrokeFor(k, nil),
			From:   domain.Point{X: x, Y: y},
			To:     domain.Point{X: x + legendSwatch, Y: y},
			Text:   domain.Point{X: x + legendSwatch + 6, Y: y},
		})
	}
	return items
}
