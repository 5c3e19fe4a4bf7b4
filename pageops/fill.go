package pageops

import (
	"io"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/layout"
)

// FillStats summarizes one filled document.
type FillStats struct {
	Pages    int // pages in the output, always the template page count
	Overlaid int // pages with a coordinates entry
	Fields   int // field values drawn across all pages
}

// Fill writes the template to w with values drawn on every page that has an
// entry in coords. Pages without an entry are passed through untouched.
func Fill(w io.Writer, t *Template, coords layout.Coordinates, values map[string]string, logger *zap.Logger) (FillStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := layout.NewRenderer(logger)
	stats := FillStats{Pages: t.PageCount()}

	var pages []int
	for n := 1; n <= t.PageCount(); n++ {
		if _, ok := coords.Page(n); ok {
			pages = append(pages, n)
			continue
		}
		logger.Debug("page passed through", zap.Int("page", n))
	}

	err := t.compose(w, pages, func(pdf *fpdf.Fpdf, n int, size PageSize) {
		page, _ := coords.Page(n)
		drawn := r.RenderPage(pdf, size.Height, page, values)
		logger.Debug("page overlaid",
			zap.Int("page", n),
			zap.Int("placed", len(page)),
			zap.Int("drawn", drawn))
		stats.Overlaid++
		stats.Fields += drawn
	})
	if err != nil {
		return FillStats{}, err
	}
	return stats, nil
}
