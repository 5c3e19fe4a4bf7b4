package pageops

import (
	"io"
	"strconv"

	"codeberg.org/go-pdf/fpdf"

	"github.com/cstone-estimating/proposal/layout"
)

// DefaultGrid is the default grid spacing in points.
const DefaultGrid = 50

// CalibrationOptions controls the calibration overlay.
type CalibrationOptions struct {
	Grid     float64 // grid spacing in points; 0 or less draws no grid
	NoGrid   bool
	NoLabels bool // omit field names next to markers
}

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

var (
	gridLineColor  = RGBColor{204, 204, 204}
	gridLabelColor = RGBColor{102, 102, 102}
	markerColor    = RGBColor{255, 0, 0}
)

const (
	labelSize  = 6.0
	markerArm  = 6.0
	labelShift = 8.0
)

// Calibrate writes the template to w with a ruler grid on every page and a
// crosshair at each configured field position. Without a grid only pages with
// field positions are stamped.
func Calibrate(w io.Writer, t *Template, coords layout.Coordinates, opts CalibrationOptions) error {
	grid := !opts.NoGrid && opts.Grid > 0
	var pages []int
	for n := 1; n <= t.PageCount(); n++ {
		if page, _ := coords.Page(n); grid || len(page) > 0 {
			pages = append(pages, n)
		}
	}
	return t.compose(w, pages, func(pdf *fpdf.Fpdf, n int, size PageSize) {
		if grid {
			drawGrid(pdf, size, opts.Grid)
		}
		page, _ := coords.Page(n)
		drawMarkers(pdf, size, page, !opts.NoLabels)
	})
}

// drawGrid rules lines every step points from the bottom-left origin and
// labels each with its coordinate.
func drawGrid(pdf *fpdf.Fpdf, size PageSize, step float64) {
	pdf.SetDrawColor(gridLineColor.R, gridLineColor.G, gridLineColor.B)
	pdf.SetTextColor(gridLabelColor.R, gridLabelColor.G, gridLabelColor.B)
	pdf.SetFont("Helvetica", "", labelSize)

	for x := 0.0; x <= size.Width; x += step {
		pdf.Line(x, 0, x, size.Height)
		pdf.Text(x+2, size.Height-2, strconv.Itoa(int(x)))
	}
	for y := 0.0; y <= size.Height; y += step {
		top := size.Height - y
		pdf.Line(0, top, size.Width, top)
		pdf.Text(2, top-2, strconv.Itoa(int(y)))
	}
}

// drawMarkers draws a crosshair at every placement of page.
func drawMarkers(pdf *fpdf.Fpdf, size PageSize, page layout.Page, labels bool) {
	if len(page) == 0 {
		return
	}
	pdf.SetDrawColor(markerColor.R, markerColor.G, markerColor.B)
	pdf.SetTextColor(markerColor.R, markerColor.G, markerColor.B)
	pdf.SetFont("Helvetica", "", labelSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, name := range page.Names() {
		p := page[name]
		top := size.Height - p.Y
		pdf.Line(p.X-markerArm, top, p.X+markerArm, top)
		pdf.Line(p.X, top-markerArm, p.X, top+markerArm)
		if labels {
			pdf.Text(p.X+labelShift, top-markerArm, tr(name))
		}
	}
}
