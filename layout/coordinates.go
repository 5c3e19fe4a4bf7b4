// Package layout describes where proposal fields are printed and draws them
// onto overlay pages.
//
// The coordinates config is a JSON object keyed by 1-based page:
//
//	{
//	  "page_1": {
//	    "total":  {"x": 100, "y": 200, "font": "Helvetica", "size": 10},
//	    "client": {"x": 306, "y": 700, "align": "center", "max_width": 250}
//	  }
//	}
//
// Coordinates are PDF points measured from the bottom-left corner of the page.
// Keys that do not start with "page_" are ignored so configs can carry notes.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cstone-estimating/proposal/textfit"
)

// Placement defaults.
const (
	DefaultSize    = 10.0
	DefaultMinSize = 8.0
)

// ErrUnknownAlign is returned for alignment names other than left, right and
// center.
var ErrUnknownAlign = errors.New("layout: unknown alignment")

// Align anchors text horizontally at a placement's x.
type Align int

const (
	AlignLeft   Align = iota // text starts at x
	AlignRight               // text ends at x
	AlignCenter              // text is centered on x
)

var alignNames = [...]string{"left", "right", "center"}

func (a Align) String() string {
	if a < 0 || int(a) >= len(alignNames) {
		return "Align(" + strconv.Itoa(int(a)) + ")"
	}
	return alignNames[a]
}

// MarshalText encodes the alignment name.
func (a Align) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an alignment name. The empty string means left.
func (a *Align) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "left":
		*a = AlignLeft
	case "right":
		*a = AlignRight
	case "center", "centre":
		*a = AlignCenter
	default:
		return fmt.Errorf("%w %q", ErrUnknownAlign, string(b))
	}
	return nil
}

// Placement positions one field on a page.
type Placement struct {
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Font     textfit.Font `json:"font"`
	Size     float64      `json:"size"`
	Align    Align        `json:"align"`
	MaxWidth float64      `json:"max_width,omitempty"` // 0 means unconstrained
	MinSize  float64      `json:"min_size"`
}

// UnmarshalJSON decodes a placement, applying defaults and requiring x and y.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var raw struct {
		X        *float64      `json:"x"`
		Y        *float64      `json:"y"`
		Font     *textfit.Font `json:"font"`
		Size     *float64      `json:"size"`
		Align    Align         `json:"align"`
		MaxWidth *float64      `json:"max_width"`
		MinSize  *float64      `json:"min_size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.X == nil || raw.Y == nil {
		return errors.New(`"x" and "y" are required`)
	}

	font, _ := textfit.LookupFont(textfit.DefaultFont)
	if raw.Font != nil {
		font = *raw.Font
	}
	*p = Placement{
		X:       *raw.X,
		Y:       *raw.Y,
		Font:    font,
		Size:    DefaultSize,
		Align:   raw.Align,
		MinSize: DefaultMinSize,
	}
	if raw.Size != nil {
		p.Size = *raw.Size
	}
	if raw.MinSize != nil {
		p.MinSize = *raw.MinSize
	}
	if raw.MaxWidth != nil {
		p.MaxWidth = *raw.MaxWidth
	}
	return p.validate()
}

func (p *Placement) validate() error {
	for _, v := range []float64{p.X, p.Y, p.Size, p.MinSize, p.MaxWidth} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("values must be finite")
		}
	}
	switch {
	case p.Size <= 0:
		return fmt.Errorf("size %v must be positive", p.Size)
	case p.MinSize <= 0:
		return fmt.Errorf("min_size %v must be positive", p.MinSize)
	case p.MaxWidth < 0:
		return fmt.Errorf("max_width %v must not be negative", p.MaxWidth)
	}
	return nil
}

// Page maps field names to their placements on one page.
type Page map[string]Placement

// Names returns the field names of the page in sorted order.
func (p Page) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coordinates maps 1-based page numbers to page placements.
type Coordinates map[int]Page

// Page returns the placements for page n and whether the page is configured.
func (c Coordinates) Page(n int) (Page, bool) {
	p, ok := c[n]
	return p, ok
}

// Pages returns the configured page numbers in ascending order.
func (c Coordinates) Pages() []int {
	pages := make([]int, 0, len(c))
	for n := range c {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

// PageKey returns the config key of page n, e.g. "page_3".
func PageKey(n int) string {
	return "page_" + strconv.Itoa(n)
}

// ParseCoordinates decodes and validates a coordinates config.
func ParseCoordinates(data []byte) (Coordinates, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("layout: parsing coordinates: %w", err)
	}
	if raw == nil {
		return nil, errors.New("layout: coordinates must be a JSON object")
	}

	coords := make(Coordinates, len(raw))
	for key, msg := range raw {
		suffix, ok := strings.CutPrefix(key, "page_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("layout: invalid page key %q", key)
		}
		if _, dup := coords[n]; dup {
			return nil, fmt.Errorf("layout: page %d is configured twice", n)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, fmt.Errorf("layout: %s: %w", key, err)
		}
		page := make(Page, len(fields))
		for name, fmsg := range fields {
			var p Placement
			if err := json.Unmarshal(fmsg, &p); err != nil {
				return nil, fmt.Errorf("layout: %s.%s: %w", key, name, err)
			}
			page[name] = p
		}
		coords[n] = page
	}
	return coords, nil
}

// LoadCoordinates reads a coordinates config from path.
func LoadCoordinates(path string) (Coordinates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: reading coordinates %s: %w", path, err)
	}
	coords, err := ParseCoordinates(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return coords, nil
}
