package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"topodiagram/internal/render"
)

// page describes a single PDF page sized to an image
type page struct {
	Orientation string
	Size        fpdf.SizeType
}

// pageLayout returns the page setup for an image of w by h pixels, one
// point per pixel. fpdf swaps the size for landscape pages, so the size is
// given short side first in that case.
func pageLayout(w, h int) page {
	if w > h {
		return page{Orientation: "L", Size: fpdf.SizeType{Wd: float64(h), Ht: float64(w)}}
	}
	return page{Orientation: "P", Size: fpdf.SizeType{Wd: float64(w), Ht: float64(h)}}
}

func encodePDF(c render.Container, scale float64) ([]byte, error) {
	img, w, h, err := encodePNG(c, scale)
	if err != nil {
		return nil, err
	}

	layout := pageLayout(w, h)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: layout.Orientation,
		UnitStr:        "pt",
		Size:           layout.Size,
	})
	pdf.SetTitle(c.Chrome.Title, true)
	pdf.SetSubject(c.Chrome.Customer, true)
	pdf.SetCreator("topodiagram", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("diagram", opts, bytes.NewReader(img))
	pdf.ImageOptions("diagram", 0, 0, float64(w), float64(h), false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
