package render

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"topodiagram/internal/domain"
)

func sampleScene(editable bool) Scene {
	devices := []domain.Device{
		device("olt-0", domain.DeviceTypeOLT, 100, 200),
		device("splitter-0", domain.DeviceTypeSplitter, 300, 200),
		device("onu-0", domain.DeviceTypeONT, 500, 200),
	}
	connections := []domain.Connection{
		{ID: "c1", From: "olt-0", To: "splitter-0", Kind: domain.ConnectionFiber, Label: "PON"},
		{ID: "c2", From: "splitter-0", To: "onu-0", Kind: domain.ConnectionWireless},
	}
	view := View{Scale: 1.5, Pan: domain.Point{X: 10, Y: 20}}
	return Render(devices, connections, view, Options{Width: 600, Height: 400, Editable: editable})
}

type svgCounts struct {
	devices     int
	connections int
	viewport    string
}

func countSVG(t *testing.T, data []byte) svgCounts {
	t.Helper()

	var counts svgCounts
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to reparse SVG: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		classes := strings.Fields(attr(start, "class"))
		switch start.Name.Local {
		case "g":
			if hasClass(classes, "device") {
				counts.devices++
			}
			if hasClass(classes, "viewport") {
				counts.viewport = attr(start, "transform")
			}
		case "path":
			if hasClass(classes, "connection") {
				counts.connections++
			}
		}
	}
	return counts
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}

func TestEncodeSVG(t *testing.T) {
	for _, editable := range []bool{false, true} {
		var buf bytes.Buffer
		if err := EncodeSVG(&buf, sampleScene(editable)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		counts := countSVG(t, buf.Bytes())
		if counts.devices != 3 {
			t.Errorf("editable=%v: expected 3 device groups, got %d", editable, counts.devices)
		}
		if counts.connections != 2 {
			t.Errorf("editable=%v: expected 2 connection paths, got %d", editable, counts.connections)
		}
		if counts.viewport != "matrix(1.5 0 0 1.5 10 20)" {
			t.Errorf("expected the live view transform, got %q", counts.viewport)
		}
	}
}

func TestEncodeSVGCurves(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeSVG(&buf, sampleScene(false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `d="M 100 200 L 300 200"`) {
		t.Error("expected a straight fiber path")
	}
	if !strings.Contains(out, `d="M 300 200 Q 400 180 500 200"`) {
		t.Error("expected an arced wireless path")
	}
	if !strings.Contains(out, `stroke-dasharray="6 4"`) {
		t.Error("expected the wireless dash pattern")
	}
}

func TestEncodeSVGDocument(t *testing.T) {
	c := Container{
		Chrome: Chrome{Title: "Fiber <Topology>", Customer: "Smith & Sons", Address: "1 Main St"},
		Scene:  sampleScene(true),
	}

	var buf bytes.Buffer
	if err := EncodeSVGDocument(&buf, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := countSVG(t, buf.Bytes())
	if counts.devices != 3 || counts.connections != 2 {
		t.Errorf("expected 3 devices and 2 connections, got %d and %d", counts.devices, counts.connections)
	}

	out := buf.String()
	if !strings.Contains(out, "Fiber &lt;Topology&gt;") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(out, "Smith &amp; Sons - 1 Main St") {
		t.Error("expected customer and address in the header")
	}
	if !strings.Contains(out, `height="492"`) {
		t.Error("expected container height to include header and legend")
	}
}
