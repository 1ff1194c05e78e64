package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const svgNS = "http://www.w3.org/2000/svg"

// EncodeSVG writes the rendering surface as a standalone SVG document.
// The viewport group carries the scene's view transform, so the output
// shows the diagram exactly as currently panned and zoomed.
func EncodeSVG(w io.Writer, s Scene) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="%s" class="topology-surface" width="%s" height="%s" viewBox="0 0 %s %s">`,
		svgNS, formatFloat(s.Width), formatFloat(s.Height), formatFloat(s.Width), formatFloat(s.Height))
	b.WriteString("\n")
	writeViewport(&b, s)
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// EncodeSVGDocument writes the whole container, header and legend included,
// as an SVG document
func EncodeSVGDocument(w io.Writer, c Container) error {
	width, height := c.Size()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="%s" class="topology-diagram" width="%s" height="%s" viewBox="0 0 %s %s">`,
		svgNS, formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height))
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect class="background" x="0" y="0" width="%s" height="%s" fill="#ffffff" />`+"\n",
		formatFloat(width), formatFloat(height))

	b.WriteString(`  <g class="header">` + "\n")
	fmt.Fprintf(&b, `    <text x="%s" y="24" font-family="sans-serif" font-size="16" font-weight="bold" fill="#111827">%s</text>`+"\n",
		formatFloat(chromeMargin), escape(c.Chrome.Title))
	if sub := c.Chrome.Subtitle(); sub != "" {
		fmt.Fprintf(&b, `    <text x="%s" y="44" font-family="sans-serif" font-size="12" fill="#4b5563">%s</text>`+"\n",
			formatFloat(chromeMargin), escape(sub))
	}
	b.WriteString("  </g>\n")

	s := c.Scene
	fmt.Fprintf(&b, `  <svg class="topology-surface" x="0" y="%s" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		formatFloat(HeaderHeight), formatFloat(s.Width), formatFloat(s.Height), formatFloat(s.Width), formatFloat(s.Height))
	writeViewport(&b, s)
	b.WriteString("  </svg>\n")

	fmt.Fprintf(&b, `  <g class="legend" transform="translate(0 %s)">`+"\n", formatFloat(height-LegendHeight))
	for _, item := range c.Legend() {
		fmt.Fprintf(&b, `    <line x1="%s" y1="%s" x2="%s" y2="%s" %s />`+"\n",
			formatFloat(item.From.X), formatFloat(item.From.Y), formatFloat(item.To.X), formatFloat(item.To.Y), strokeAttrs(item.Stroke))
		fmt.Fprintf(&b, `    <text x="%s" y="%s" font-family="sans-serif" font-size="11" dominant-baseline="middle" fill="#374151">%s</text>`+"\n",
			formatFloat(item.Text.X), formatFloat(item.Text.Y), escape(item.Label))
	}
	b.WriteString("  </g>\n")
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeViewport(b *strings.Builder, s Scene) {
	fmt.Fprintf(b, `  <g class="viewport" transform="%s">`+"\n", s.View.Transform().SVG())

	b.WriteString(`    <g class="connections">` + "\n")
	for _, p := range s.Paths {
		writePath(b, p)
	}
	b.WriteString("    </g>\n")

	b.WriteString(`    <g class="devices">` + "\n")
	for _, n := range s.Nodes {
		writeNode(b, n)
	}
	b.WriteString("    </g>\n")

	b.WriteString("  </g>\n")
}

func writePath(b *strings.Builder, p Path) {
	d := "M " + formatPoint(p.From.X, p.From.Y) + " L " + formatPoint(p.To.X, p.To.Y)
	if p.Shape == ShapeQuad {
		d = "M " + formatPoint(p.From.X, p.From.Y) + " Q " + formatPoint(p.Control.X, p.Control.Y) + " " + formatPoint(p.To.X, p.To.Y)
	}
	fmt.Fprintf(b, `      <path class="connection connection-%s" data-id="%s" d="%s" fill="none" %s />`+"\n",
		escape(string(p.Kind)), escape(p.ConnectionID), d, strokeAttrs(p.Stroke))

	if p.Label == nil {
		return
	}
	box := p.Label.Box
	b.WriteString(`      <g class="connection-label">` + "\n")
	fmt.Fprintf(b, `        <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="#ffffff" stroke="%s" stroke-width="1" />`+"\n",
		formatFloat(box.X), formatFloat(box.Y), formatFloat(box.W), formatFloat(box.H), formatFloat(box.Radius), p.Stroke.Color)
	fmt.Fprintf(b, `        <text x="%s" y="%s" font-family="sans-serif" font-size="10" text-anchor="middle" dominant-baseline="middle" fill="#374151">%s</text>`+"\n",
		formatFloat(p.Label.Center.X), formatFloat(p.Label.Center.Y), escape(p.Label.Text))
	b.WriteString("      </g>\n")
}

func writeNode(b *strings.Builder, n Node) {
	fmt.Fprintf(b, `      <g class="device" data-id="%s" data-type="%s" data-status="%s">`+"\n",
		escape(n.DeviceID), escape(string(n.Type)), n.Status)

	body := n.Body
	fmt.Fprintf(b, `        <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="#ffffff" stroke="%s" stroke-width="2" />`+"\n",
		formatFloat(body.X), formatFloat(body.Y), formatFloat(body.W), formatFloat(body.H), formatFloat(body.Radius), n.Color)

	x := formatFloat(n.Position.X)
	fmt.Fprintf(b, `        <text class="icon" x="%s" y="%s" font-family="sans-serif" font-size="14" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`+"\n",
		x, formatFloat(n.Position.Y-4), n.Color, escape(n.Icon))
	fmt.Fprintf(b, `        <text class="label" x="%s" y="%s" font-family="sans-serif" font-size="11" text-anchor="middle" fill="#111827">%s</text>`+"\n",
		x, formatFloat(n.Position.Y+12), escape(n.Label))
	fmt.Fprintf(b, `        <text class="tag" x="%s" y="%s" font-family="sans-serif" font-size="8" text-anchor="middle" fill="#6b7280">%s</text>`+"\n",
		x, formatFloat(n.Position.Y+24), escape(n.Tag))
	fmt.Fprintf(b, `        <circle class="status" cx="%s" cy="%s" r="%s" fill="%s" />`+"\n",
		formatFloat(n.StatusDot.X), formatFloat(n.StatusDot.Y), formatFloat(StatusRadius), n.StatusColor)

	for _, a := range n.Affordances {
		fmt.Fprintf(b, `        <g class="affordance affordance-%s" data-action="%s" data-id="%s">`+"\n", a.Action, a.Action, escape(n.DeviceID))
		fmt.Fprintf(b, `          <circle cx="%s" cy="%s" r="%s" fill="%s" />`+"\n",
			formatFloat(a.Center.X), formatFloat(a.Center.Y), formatFloat(a.Radius), affordanceColor(a.Action))
		fmt.Fprintf(b, `          <text x="%s" y="%s" font-family="sans-serif" font-size="9" text-anchor="middle" dominant-baseline="middle" fill="#ffffff">%s</text>`+"\n",
			formatFloat(a.Center.X), formatFloat(a.Center.Y), a.Glyph)
		b.WriteString("        </g>\n")
	}

	b.WriteString("      </g>\n")
}

func strokeAttrs(s Stroke) string {
	attrs := fmt.Sprintf(`stroke="%s" stroke-width="%s"`, escape(s.Color), formatFloat(s.Width))
	if len(s.Dash) > 0 {
		dash := make([]string, len(s.Dash))
		for i, v := range s.Dash {
			dash[i] = formatFloat(v)
		}
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(dash, " "))
	}
	return attrs
}

func affordanceColor(action string) string {
	if action == ActionDelete {
		return "#ef4444"
	}
	return "#3b82f6"
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(x, y float64) string {
	return formatFloat(x) + " " + formatFloat(y)
}
