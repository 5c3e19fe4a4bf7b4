// Package workbook reads typed cell values out of an .xlsx workbook.
//
// Only stored values are read: formula cells yield their cached result, and a
// formula that was never calculated reads as empty. A missing sheet, an unset
// reference or an invalid cell name is a normal outcome that yields an empty
// value, never an error.
package workbook

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/cell"
)

// Ref addresses one cell by sheet name and A1-style reference.
type Ref struct {
	Sheet string
	Cell  string
}

// Workbook is an open workbook. It must be closed after use.
type Workbook struct {
	file     *excelize.File
	sheets   map[string]struct{}
	date1904 bool
	logger   *zap.Logger
}

// Open opens the workbook at path.
func Open(path string, logger *zap.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: opening %s: %w", path, err)
	}
	return newWorkbook(f, logger), nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader, logger *zap.Logger) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: reading input: %w", err)
	}
	return newWorkbook(f, logger), nil
}

func newWorkbook(f *excelize.File, logger *zap.Logger) *Workbook {
	if logger == nil {
		logger = zap.NewNop()
	}
	wb := &Workbook{
		file:   f,
		sheets: make(map[string]struct{}),
		logger: logger,
	}
	for _, name := range f.GetSheetList() {
		wb.sheets[name] = struct{}{}
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb
}

// Close releases the workbook's resources.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// Sheets returns the sheet names in workbook order.
func (wb *Workbook) Sheets() []string {
	return wb.file.GetSheetList()
}

// Value returns the typed value stored at ref.
func (wb *Workbook) Value(ref Ref) cell.Value {
	if ref.Sheet == "" || ref.Cell == "" {
		return cell.None()
	}
	if _, ok := wb.sheets[ref.Sheet]; !ok {
		wb.logger.Debug("sheet not found", zap.String("sheet", ref.Sheet))
		return cell.None()
	}
	name := strings.ToUpper(strings.TrimSpace(ref.Cell))

	typ, err := wb.file.GetCellType(ref.Sheet, name)
	if err != nil {
		wb.logger.Debug("unreadable cell", zap.String("sheet", ref.Sheet), zap.String("cell", ref.Cell), zap.Error(err))
		return cell.None()
	}
	raw, err := wb.file.GetCellValue(ref.Sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		wb.logger.Debug("unreadable cell", zap.String("sheet", ref.Sheet), zap.String("cell", ref.Cell), zap.Error(err))
		return cell.None()
	}
	if raw == "" {
		return cell.None()
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return cell.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return cell.Text("TRUE")
		}
		return cell.Text("FALSE")
	case excelize.CellTypeDate:
		if v, ok := parseISODate(raw); ok {
			return v
		}
		return cell.Text(raw)
	}
	return wb.numeric(ref.Sheet, name, raw)
}

// Read returns the value of every ref.
func (wb *Workbook) Read(refs map[string]Ref) map[string]cell.Value {
	values := make(map[string]cell.Value, len(refs))
	for name, ref := range refs {
		values[name] = wb.Value(ref)
	}
	return values
}

// Read opens the workbook at path, reads every ref and closes it again.
func Read(path string, refs map[string]Ref, logger *zap.Logger) (map[string]cell.Value, error) {
	wb, err := Open(path, logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.Read(refs), nil
}

var integerRe = regexp.MustCompile(`^-?[0-9]+$`)

// numeric interprets a stored number, turning it into a date when the cell's
// number format is a date format.
func (wb *Workbook) numeric(sheet, name, raw string) cell.Value {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return cell.Text(raw)
	}
	if wb.isDateStyled(sheet, name) {
		t, err := excelize.ExcelDateToTime(f, wb.date1904)
		if err == nil {
			return cell.Date(t)
		}
	}
	if integerRe.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return cell.Int(n)
		}
	}
	return cell.Float(f)
}

func (wb *Workbook) isDateStyled(sheet, name string) bool {
	id, err := wb.file.GetCellStyle(sheet, name)
	if err != nil || id == 0 {
		return false
	}
	style, err := wb.file.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

func parseISODate(raw string) (cell.Value, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999Z07:00", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return cell.Date(t), true
		}
	}
	return cell.Value{}, false
}
