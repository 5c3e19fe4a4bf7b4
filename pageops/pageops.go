// Package pageops composes output documents from the pages of a template PDF.
//
// Overlay content is drawn with fpdf onto blank pages sized like the template
// pages (measured with the gofpdi contrib package), then stamped unscaled onto
// the template with pdfcpu. Only pages that carry an overlay are touched; the
// rest of the document, annotations and outline included, is written through
// as read. Pages are never added, dropped or reordered.
package pageops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrInvalidTemplate is returned when a template PDF cannot be read or
// imported.
var ErrInvalidTemplate = errors.New("pageops: invalid template")

const pageBox = "/MediaBox"

// PageSize is the media box size of a page in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Template is a validated template PDF held in memory.
type Template struct {
	data      []byte
	pageCount int
}

// LoadTemplate reads and validates the template PDF at path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pageops: reading template %s: %w", path, err)
	}
	t, err := NewTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return t, nil
}

// ReadTemplate reads and validates a template PDF from r.
func ReadTemplate(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pageops: reading template: %w", err)
	}
	return NewTemplate(data)
}

// NewTemplate validates data as a PDF document with at least one page.
func NewTemplate(data []byte) (*Template, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidTemplate)
	}
	return &Template{data: data, pageCount: ctx.PageCount}, nil
}

// PageCount returns the number of pages in the template.
func (t *Template) PageCount() int { return t.pageCount }

// PageSizes returns the media box size of every page, in page order.
func (t *Template) PageSizes() (sizes []PageSize, err error) {
	// gofpdi panics on content it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			sizes, err = nil, fmt.Errorf("%w: reading page sizes: %v", ErrInvalidTemplate, r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(t.data)
	for n := 1; n <= t.pageCount; n++ {
		imp.ImportPageFromStream(pdf, &rs, n, pageBox)
		size, ok := importedSize(imp, n)
		if !ok {
			return nil, fmt.Errorf("%w: page %d has no media box", ErrInvalidTemplate, n)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

// overlayFunc draws on the overlay page for template page n.
type overlayFunc func(pdf *fpdf.Fpdf, n int, size PageSize)

// overlayDate is written as the creation and modification date of every
// overlay. With sorted catalogs, equal input renders equal overlay bytes.
var overlayDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// stampDesc places a stamp page unscaled with its origin on the page origin.
const stampDesc = "position:bl, offset:0 0, scalefactor:1 abs, rotation:0"

// compose writes the template to w with an overlay stamped on top of each of
// pages. Page dictionaries and document level structure are carried over as
// read. When pages is empty the template bytes are written unchanged.
func (t *Template) compose(w io.Writer, pages []int, overlay overlayFunc) error {
	if len(pages) == 0 {
		if _, err := w.Write(t.data); err != nil {
			return fmt.Errorf("pageops: writing output: %w", err)
		}
		return nil
	}

	sizes, err := t.PageSizes()
	if err != nil {
		return err
	}
	stamps, err := renderOverlay(sizes, pages, overlay)
	if err != nil {
		return err
	}

	wms := make(map[int]*model.Watermark, len(pages))
	for i, n := range pages {
		wm, err := api.PDFWatermarkForReadSeeker(bytes.NewReader(stamps), i+1, stampDesc, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("pageops: preparing overlay for page %d: %w", n, err)
		}
		wms[n] = wm
	}
	if err := api.AddWatermarksMap(bytes.NewReader(t.data), w, wms, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("pageops: stamping overlay: %w", err)
	}
	return nil
}

// renderOverlay draws one page per entry of pages, sized like the template
// page it belongs to, and returns the resulting document.
func renderOverlay(sizes []PageSize, pages []int, overlay overlayFunc) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(overlayDate)
	pdf.SetModificationDate(overlayDate)

	for _, n := range pages {
		if n < 1 || n > len(sizes) {
			return nil, fmt.Errorf("pageops: no template page %d", n)
		}
		size := sizes[n-1]
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
		overlay(pdf, n, size)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("pageops: drawing overlay: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pageops: writing overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// importedSize returns the media box size of imported page n.
func importedSize(imp *gofpdi.Importer, n int) (PageSize, bool) {
	dims, ok := imp.GetPageSizes()[n]
	if !ok {
		return PageSize{}, false
	}
	box, ok := dims[pageBox]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return PageSize{}, false
	}
	return PageSize{Width: box["w"], Height: box["h"]}, true
}
