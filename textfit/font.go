package textfit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFont is returned for font names outside the PDF core set.
var ErrUnknownFont = errors.New("textfit: unknown font")

// DefaultFont is used when a placement names no font.
const DefaultFont = "Helvetica"

// Font identifies one of the standard PDF core fonts by fpdf family and style.
type Font struct {
	Name   string // canonical PostScript name, e.g. "Helvetica-Bold"
	Family string // fpdf family: helvetica, times, courier, symbol, zapfdingbats
	Style  string // "", "B", "I" or "BI"
}

func (f Font) String() string { return f.Name }

var coreFonts = []Font{
	{"Helvetica", "helvetica", ""},
	{"Helvetica-Bold", "helvetica", "B"},
	{"Helvetica-Oblique", "helvetica", "I"},
	{"Helvetica-BoldOblique", "helvetica", "BI"},
	{"Times-Roman", "times", ""},
	{"Times-Bold", "times", "B"},
	{"Times-Italic", "times", "I"},
	{"Times-BoldItalic", "times", "BI"},
	{"Courier", "courier", ""},
	{"Courier-Bold", "courier", "B"},
	{"Courier-Oblique", "courier", "I"},
	{"Courier-BoldOblique", "courier", "BI"},
	{"Symbol", "symbol", ""},
	{"ZapfDingbats", "zapfdingbats", ""},
}

var fontsByName = func() map[string]Font {
	m := make(map[string]Font, len(coreFonts)+6)
	for _, f := range coreFonts {
		m[strings.ToLower(f.Name)] = f
	}
	// Common aliases accepted by PDF producers.
	m["times"] = m["times-roman"]
	m["arial"] = m["helvetica"]
	m["arial-bold"] = m["helvetica-bold"]
	m["arial-italic"] = m["helvetica-oblique"]
	m["arial-bolditalic"] = m["helvetica-boldoblique"]
	return m
}()

// LookupFont resolves a font name case-insensitively. An empty name resolves
// to DefaultFont.
func LookupFont(name string) (Font, error) {
	if name == "" {
		name = DefaultFont
	}
	f, ok := fontsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Font{}, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	return f, nil
}

// MarshalText encodes the canonical font name.
func (f Font) MarshalText() ([]byte, error) {
	return []byte(f.Name), nil
}

// UnmarshalText resolves a font name with LookupFont.
func (f *Font) UnmarshalText(b []byte) error {
	font, err := LookupFont(string(b))
	if err != nil {
		return err
	}
	*f = font
	return nil
}
