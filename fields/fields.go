// Package fields builds the map of display strings placed on a proposal.
//
// Values are read from the workbook through the mapping config, formatted per
// field, and completed with the derived plan_set_date_line field. A field that
// cannot be read or formatted holds the mapping's missing-value sentinel.
package fields

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/cell"
	"github.com/cstone-estimating/proposal/format"
	"github.com/cstone-estimating/proposal/workbook"
)

// Derived field names.
const (
	PlanSetDate     = "plan_set_date"
	PlanSetDateLine = "plan_set_date_line"
)

// Values maps field names to their final display strings.
type Values map[string]string

// Source yields raw cell values. *workbook.Workbook implements it.
type Source interface {
	Value(ref workbook.Ref) cell.Value
}

// Build reads the workbook at path and formats every mapped field.
// Only failing to open the workbook is an error.
func Build(path string, m *Mapping, logger *zap.Logger) (Values, error) {
	wb, err := workbook.Open(path, logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return BuildFrom(wb, m, logger), nil
}

// BuildFrom formats every mapped field using values from src.
func BuildFrom(src Source, m *Mapping, logger *zap.Logger) Values {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := m.FormatOptions()
	values := make(Values, len(m.Fields)+1)
	for name, spec := range m.Fields {
		raw := src.Value(spec.Ref())
		values[name] = format.Value(raw, spec.Format, opts)
		if values[name] == opts.Missing {
			logger.Debug("field resolved to missing value",
				zap.String("field", name),
				zap.String("sheet", spec.Sheet),
				zap.String("cell", spec.Cell),
				zap.Stringer("format", spec.Format),
				zap.Stringer("raw_kind", raw.Kind()))
		}
	}
	values[PlanSetDateLine] = PlanSetLine(values[PlanSetDate], opts.Missing)
	return values
}

// PlanSetLine renders the plan set sentence for an already formatted date.
func PlanSetLine(planSetDate, missing string) string {
	if planSetDate == "" || planSetDate == missing {
		return missing
	}
	return fmt.Sprintf("Estimate based on plan set dated: %s", planSetDate)
}
