package fields

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cstone-estimating/proposal/format"
	"github.com/cstone-estimating/proposal/workbook"
)

// Mapping is the field mapping config: where each field lives in the
// workbook and how it is formatted.
//
// Example JSON:
//
//	{
//	  "missing_value": "N/A",
//	  "prepared_by_map": {"JD": "Jane Doe"},
//	  "fields": {
//	    "total": {"sheet": "Sheet1", "cell": "B1", "format": "currency"}
//	  }
//	}
type Mapping struct {
	MissingValue string               `json:"missing_value"`
	PreparedBy   map[string]string    `json:"prepared_by_map"`
	Fields       map[string]FieldSpec `json:"fields"`
}

// FieldSpec locates one field. An empty Format means text.
type FieldSpec struct {
	Sheet  string      `json:"sheet"`
	Cell   string      `json:"cell"`
	Format format.Kind `json:"format"`
}

// Ref returns the workbook reference of the field.
func (s FieldSpec) Ref() workbook.Ref {
	return workbook.Ref{Sheet: s.Sheet, Cell: s.Cell}
}

// ParseMapping decodes and validates a mapping config.
func ParseMapping(data []byte) (*Mapping, error) {
	var raw struct {
		Mapping
		Fields *map[string]FieldSpec `json:"fields"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("fields: parsing mapping: %w", err)
	}
	if raw.Fields == nil {
		return nil, errors.New(`fields: mapping: missing required key "fields"`)
	}

	m := raw.Mapping
	m.Fields = *raw.Fields
	if m.PreparedBy == nil {
		m.PreparedBy = map[string]string{}
	}
	for name := range m.Fields {
		if name == "" {
			return nil, errors.New("fields: mapping: empty field name")
		}
	}
	return &m, nil
}

// LoadMapping reads a mapping config from path.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fields: reading mapping %s: %w", path, err)
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// Refs returns the workbook reference of every field.
func (m *Mapping) Refs() map[string]workbook.Ref {
	refs := make(map[string]workbook.Ref, len(m.Fields))
	for name, spec := range m.Fields {
		refs[name] = spec.Ref()
	}
	return refs
}

// FormatOptions returns the formatter options carried by the mapping.
func (m *Mapping) FormatOptions() format.Options {
	return format.Options{PreparedBy: m.PreparedBy, Missing: m.MissingValue}
}
