package textfit

import (
	"codeberg.org/go-pdf/fpdf"
)

// Measurer reports the rendered width of text at a font size, in points.
type Measurer interface {
	Width(text string, size float64) float64
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(text string, size float64) float64

// Width calls f(text, size).
func (f MeasurerFunc) Width(text string, size float64) float64 { return f(text, size) }

// Metrics measures text with the core font metrics bundled with fpdf.
//
// A Metrics value owns a private, page-less document so that setting fonts on
// it never emits content. It is not safe for concurrent use.
type Metrics struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	font Font
}

// NewMetrics returns a Measurer for font.
func NewMetrics(font Font) *Metrics {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont(font.Family, font.Style, 10)
	return &Metrics{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		font: font,
	}
}

// Width returns the width of text at size.
func (m *Metrics) Width(text string, size float64) float64 {
	m.pdf.SetFontSize(size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// Font returns the measured font.
func (m *Metrics) Font() Font { return m.font }
