package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/fogleman/gg"
)

func TestRasterize(t *testing.T) {
	c := Container{
		Chrome: Chrome{Title: "Fiber Topology", Customer: "Acme"},
		Scene:  sampleScene(false),
	}

	img := Rasterize(c, 2)

	bounds := img.Bounds()
	if bounds.Dx() != 1200 || bounds.Dy() != 984 {
		t.Fatalf("expected 1200x984 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	r, g, b, _ := img.At(bounds.Max.X-1, bounds.Max.Y-1).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("expected a white background, got %v", color.RGBA64{uint16(r), uint16(g), uint16(b), 0xffff})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
}

func TestRasterizeDrawsStrokes(t *testing.T) {
	c := Container{Scene: sampleScene(false)}
	img := Rasterize(c, 1)

	// The fiber path runs along y=200 local, which lands at
	// 200*1.5+20+56 = 376 on the container, between x=160 and x=460.
	found := false
	for y := 372; y <= 380 && !found; y++ {
		r, g, b, _ := img.At(260, y).RGBA()
		if r != 0xffff || g != 0xffff || b != 0xffff {
			found = true
		}
	}
	if !found {
		t.Error("expected the fiber connection to be drawn")
	}
}

func TestRasterizeInvalidScale(t *testing.T) {
	img := Rasterize(Container{Scene: Scene{Width: 10, Height: 10}}, 0)
	if img.Bounds().Dx() != 10 {
		t.Errorf("expected scale to fall back to 1, got width %d", img.Bounds().Dx())
	}
}

func TestRasterizeTextAtPixelSize(t *testing.T) {
	c := Container{
		Chrome: Chrome{Title: "Fiber Topology"},
		Scene:  Scene{Width: 300, Height: 10},
	}
	img := Rasterize(c, 2)

	// A 16 unit title at scale 2 must match a 32px face drawn directly
	want := gg.NewContext(img.Bounds().Dx(), img.Bounds().Dy())
	want.SetHexColor("#ffffff")
	want.Clear()
	want.SetFontFace(fontFace(true, 32))
	want.SetHexColor("#111827")
	want.DrawString("Fiber Topology", chromeMargin*2, 48)
	expected := want.Image()

	inked := 0
	for y := 0; y < int(HeaderHeight*2); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			got, exp := img.At(x, y), expected.At(x, y)
			if got != exp {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, exp)
			}
			if r, _, _, _ := got.RGBA(); r < 0x8000 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("expected the title to be drawn")
	}
}
