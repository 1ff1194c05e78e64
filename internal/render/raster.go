package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"
)

// Rasterize draws the container on a white background at scale pixels per
// local unit. Stroke widths and dashes are scaled along with the geometry.
func Rasterize(c Container, scale float64) image.Image {
	if scale <= 0 {
		scale = 1
	}
	w, h := c.Size()
	dc := gg.NewContext(pixels(w*scale), pixels(h*scale))
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Scale(scale, scale)

	drawHeader(dc, c.Chrome, scale)

	s := c.Scene
	dc.Push()
	dc.Translate(0, HeaderHeight)
	dc.DrawRectangle(0, 0, s.Width, s.Height)
	dc.Clip()
	dc.Translate(s.View.Pan.X, s.View.Pan.Y)
	if s.View.Scale > 0 {
		dc.Scale(s.View.Scale, s.View.Scale)
	}

	unit := scale * math.Max(s.View.Scale, 0)
	for _, p := range s.Paths {
		drawPath(dc, p, unit)
	}
	for _, n := range s.Nodes {
		drawNode(dc, n, unit)
	}
	dc.Pop()

	dc.Push()
	dc.Translate(0, h-LegendHeight)
	for _, item := range c.Legend() {
		setStroke(dc, item.Stroke, scale)
		dc.DrawLine(item.From.X, item.From.Y, item.To.X, item.To.Y)
		dc.Stroke()
		dc.SetHexColor("#374151")
		drawText(dc, scale, item.Label, item.Text.X, item.Text.Y, 0, 0.35, false, 11)
	}
	dc.Pop()

	return dc.Image()
}

func pixels(v float64) int {
	if n := int(math.Ceil(v)); n > 0 {
		return n
	}
	return 1
}

// drawText draws s anchored at local (x, y) with a face of size local
// units. unit is the pixels per local unit of the current matrix. Glyphs
// are rasterized at pixel size on an identity matrix so they are never
// resampled.
func drawText(dc *gg.Context, unit float64, s string, x, y, ax, ay float64, bold bool, size float64) {
	if s == "" || size*unit < 0.5 {
		return
	}
	px, py := dc.TransformPoint(x, y)
	dc.Push()
	dc.Identity()
	dc.SetFontFace(fontFace(bold, size*unit))
	dc.DrawStringAnchored(s, px, py, ax, ay)
	dc.Pop()
}

func drawHeader(dc *gg.Context, c Chrome, unit float64) {
	dc.SetHexColor("#111827")
	drawText(dc, unit, c.Title, chromeMargin, 24, 0, 0, true, 16)

	if sub := c.Subtitle(); sub != "" {
		dc.SetHexColor("#4b5563")
		drawText(dc, unit, sub, chromeMargin, 44, 0, 0, false, 12)
	}
}

func drawPath(dc *gg.Context, p Path, unit float64) {
	setStroke(dc, p.Stroke, unit)
	dc.MoveTo(p.From.X, p.From.Y)
	if p.Shape == ShapeQuad {
		dc.QuadraticTo(p.Control.X, p.Control.Y, p.To.X, p.To.Y)
	} else {
		dc.LineTo(p.To.X, p.To.Y)
	}
	dc.Stroke()
	dc.SetDash()

	if p.Label == nil {
		return
	}
	box := p.Label.Box
	dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, box.Radius)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor(p.Stroke.Color)
	dc.SetLineWidth(unit)
	dc.Stroke()

	dc.SetHexColor("#374151")
	drawText(dc, unit, p.Label.Text, p.Label.Center.X, p.Label.Center.Y, 0.5, 0.35, false, 10)
}

func drawNode(dc *gg.Context, n Node, unit float64) {
	body := n.Body
	dc.DrawRoundedRectangle(body.X, body.Y, body.W, body.H, body.Radius)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor(n.Color)
	dc.SetLineWidth(2 * unit)
	dc.Stroke()

	x := n.Position.X
	dc.SetHexColor(n.Color)
	drawText(dc, unit, n.Icon, x, n.Position.Y-4, 0.5, 0, true, 14)

	dc.SetHexColor("#111827")
	drawText(dc, unit, n.Label, x, n.Position.Y+12, 0.5, 0, false, 11)

	dc.SetHexColor("#6b7280")
	drawText(dc, unit, n.Tag, x, n.Position.Y+24, 0.5, 0, false, 8)

	dc.DrawCircle(n.StatusDot.X, n.StatusDot.Y, StatusRadius)
	dc.SetHexColor(n.StatusColor)
	dc.Fill()

	for _, a := range n.Affordances {
		dc.DrawCircle(a.Center.X, a.Center.Y, a.Radius)
		dc.SetHexColor(affordanceColor(a.Action))
		dc.Fill()
		dc.SetHexColor("#ffffff")
		drawText(dc, unit, a.Glyph, a.Center.X, a.Center.Y, 0.5, 0.35, true, 9)
	}
}

func setStroke(dc *gg.Context, s Stroke, unit float64) {
	dc.SetHexColor(s.Color)
	dc.SetLineWidth(s.Width * unit)
	if len(s.Dash) == 0 {
		dc.SetDash()
		return
	}
	dash := make([]float64, len(s.Dash))
	for i, v := range s.Dash {
		dash[i] = v * unit
	}
	dc.SetDash(dash...)
}
