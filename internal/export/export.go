// Package export packages the live diagram as a downloadable SVG, PNG or
// PDF file.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"sync/atomic"

	"topodiagram/internal/render"
)

var (
	// ErrUnknownFormat is returned for formats other than svg, png and pdf
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrBusy is returned when an export is requested while another runs
	ErrBusy = errors.New("export already in progress")
)

// Format is an export file format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Formats lists the supported formats
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF}

// ParseFormat maps a format name to a Format
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// DefaultRasterScale is the device scale used for PNG and PDF output
const DefaultRasterScale = 2.0

// Surface is the mounted rendering surface an export reads from. Snapshot
// returns the scene and its chrome as one consistent container, or false
// when nothing is mounted.
type Surface interface {
	Snapshot() (render.Container, bool)
}

// Artifact is a finished export file
type Artifact struct {
	Filename    string
	ContentType string
	Format      Format
	Data        []byte
}

// Exporter serializes a surface. At most one export runs at a time.
type Exporter struct {
	surface     Surface
	rasterScale float64
	busy        atomic.Bool
}

// Option configures an Exporter
type Option func(*Exporter)

// WithRasterScale sets the pixels per local unit of PNG and PDF output
func WithRasterScale(scale float64) Option {
	return func(e *Exporter) {
		if scale > 0 {
			e.rasterScale = scale
		}
	}
}

// New creates an exporter reading from surface
func New(surface Surface, opts ...Option) *Exporter {
	e := &Exporter{surface: surface, rasterScale: DefaultRasterScale}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export produces an artifact of the current frame. SVG output is the bare
// surface with its live view transform; PNG and PDF output rasterize the
// whole container including header and legend.
//
// An unmounted surface yields (nil, nil).
func (e *Exporter) Export(ctx context.Context, format Format) (*Artifact, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if e.surface == nil {
		return nil, nil
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	container, ok := e.surface.Snapshot()
	if !ok {
		return nil, nil
	}
	chrome := container.Chrome

	var data []byte
	switch format {
	case FormatSVG:
		data, err = encodeSVG(container.Scene)
	case FormatPNG:
		data, _, _, err = encodePNG(container, e.rasterScale)
	case FormatPDF:
		data, err = encodePDF(container, e.rasterScale)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", format, err)
	}

	return &Artifact{
		Filename:    Filename(chrome.Title, chrome.Customer, format),
		ContentType: format.ContentType(),
		Format:      format,
		Data:        data,
	}, nil
}

// Busy reports whether an export is running
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Filename returns lower(title + "_" + customer) with spaces replaced by
// underscores, plus the format extension. Other characters are kept as is.
func Filename(title, customer string, format Format) string {
	base := strings.ReplaceAll(strings.ToLower(title+"_"+customer), " ", "_")
	return base + "." + string(format)
}

func encodeSVG(scene render.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.EncodeSVG(&buf, scene); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(c render.Container, scale float64) (data []byte, width, height int, err error) {
	img := render.Rasterize(c, scale)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}
