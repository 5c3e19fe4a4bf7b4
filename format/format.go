// Package format turns raw cell values into the strings printed on a proposal.
//
// Every formatter is total: a value that cannot be interpreted for the
// requested kind yields the configured missing-value sentinel, never an error.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/cstone-estimating/proposal/cell"
)

// Options carries the per-run inputs shared by all formatters.
type Options struct {
	// PreparedBy maps initials to the label printed for them.
	PreparedBy map[string]string
	// Missing is substituted whenever a value cannot be resolved.
	Missing string
}

// Value formats v according to kind.
func Value(v cell.Value, kind Kind, opts Options) string {
	switch kind {
	case KindCurrency:
		return Currency(v, opts.Missing)
	case KindDateCover:
		return DateCover(v, opts.Missing)
	case KindDatePlan:
		return DatePlan(v, opts.Missing)
	case KindInitials:
		return Initials(v, opts.PreparedBy, opts.Missing)
	default:
		return Text(v, opts.Missing)
	}
}

// Currency renders an amount as "$1,234.56", rounding half away from zero to
// cents with exact decimal arithmetic.
func Currency(v cell.Value, missing string) string {
	amount, ok := Amount(v)
	if !ok {
		return missing
	}
	amount = amount.Round(2)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	abs := amount.Abs()
	whole := humanize.BigComma(abs.Truncate(0).BigInt())
	cents := abs.StringFixed(2)
	cents = cents[strings.IndexByte(cents, '.'):]
	return "$" + sign + whole + cents
}

// Amount normalizes v to an exact decimal. Text is accepted after removing
// "$" and "," and surrounding whitespace.
func Amount(v cell.Value) (decimal.Decimal, bool) {
	switch v.Kind() {
	case cell.KindNumber:
		d, _ := v.Number()
		return d, true
	case cell.KindText:
		s, _ := v.Text()
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// dateLayouts are tried in order against textual dates. Single-digit month
// and day parts are accepted as well as zero-padded ones.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1/2/06",
}

// ParseDate interprets v as a calendar date.
func ParseDate(v cell.Value) (time.Time, bool) {
	switch v.Kind() {
	case cell.KindDate:
		t, _ := v.Date()
		return t, true
	case cell.KindText:
		s, _ := v.Text()
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// DateCover renders a date as "MARCH 05, 2024".
func DateCover(v cell.Value, missing string) string {
	t, ok := ParseDate(v)
	if !ok {
		return missing
	}
	return fmt.Sprintf("%s %02d, %d", strings.ToUpper(t.Month().String()), t.Day(), t.Year())
}

// DatePlan renders a date as "March 5, 2024".
func DatePlan(v cell.Value, missing string) string {
	t, ok := ParseDate(v)
	if !ok {
		return missing
	}
	return fmt.Sprintf("%s %d, %d", t.Month(), t.Day(), t.Year())
}

// Initials looks the trimmed value up in preparedBy. Unmapped initials are
// returned unchanged.
func Initials(v cell.Value, preparedBy map[string]string, missing string) string {
	initials := strings.TrimSpace(v.String())
	if initials == "" {
		return missing
	}
	if label, ok := preparedBy[initials]; ok {
		return label
	}
	return initials
}

// Text renders v trimmed of surrounding whitespace.
func Text(v cell.Value, missing string) string {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return missing
	}
	return s
}
