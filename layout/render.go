package layout

import (
	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/textfit"
)

// Renderer draws field values onto pages of one output document. It caches
// font metrics and must not be shared between concurrent generations.
type Renderer struct {
	logger   *zap.Logger
	metrics  map[textfit.Font]*textfit.Metrics
	tr       func(string) string
	trSource *fpdf.Fpdf
}

// NewRenderer returns a Renderer that logs fit decisions to logger. A nil
// logger discards them.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		logger:  logger,
		metrics: make(map[textfit.Font]*textfit.Metrics),
	}
}

// Measurer returns the cached metrics for font.
func (r *Renderer) Measurer(font textfit.Font) *textfit.Metrics {
	m, ok := r.metrics[font]
	if !ok {
		m = textfit.NewMetrics(font)
		r.metrics[font] = m
	}
	return m
}

// RenderPage draws every placed field that has a non-empty value onto the
// current page of pdf, whose height is pageHeight points. Fields are drawn in
// name order. It returns the number of fields drawn.
func (r *Renderer) RenderPage(pdf *fpdf.Fpdf, pageHeight float64, page Page, values map[string]string) int {
	tr := r.translator(pdf)
	drawn := 0
	for _, name := range page.Names() {
		value, ok := values[name]
		if !ok || value == "" {
			continue
		}
		p := page[name]
		m := r.Measurer(p.Font)
		fit := textfit.FitResult(m, value, p.Size, p.MaxWidth, p.MinSize)
		if fit.Shrunk || fit.Truncated {
			r.logger.Debug("fitted field",
				zap.String("field", name),
				zap.Float64("size", fit.Size),
				zap.Bool("truncated", fit.Truncated),
				zap.String("text", fit.Text))
		}

		pdf.SetFont(p.Font.Family, p.Font.Style, fit.Size)
		x := anchor(p.Align, p.X, m.Width(fit.Text, fit.Size))
		// fpdf measures y from the top of the page.
		pdf.Text(x, pageHeight-p.Y, tr(fit.Text))
		drawn++
	}
	return drawn
}

// translator returns the cp1252 translator of pdf, used for the core fonts.
func (r *Renderer) translator(pdf *fpdf.Fpdf) func(string) string {
	if r.trSource != pdf {
		r.tr = pdf.UnicodeTranslatorFromDescriptor("")
		r.trSource = pdf
	}
	return r.tr
}

// anchor returns the left edge of text of the given width aligned at x.
func anchor(align Align, x, width float64) float64 {
	switch align {
	case AlignRight:
		return x - width
	case AlignCenter:
		return x - width/2
	default:
		return x
	}
}
