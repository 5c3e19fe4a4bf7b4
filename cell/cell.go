// Package cell defines the raw value read out of a spreadsheet cell.
//
// A Value is a closed tagged variant: it is either empty, a number, a piece of
// text, or a calendar date. Formatters switch on Kind instead of inspecting
// dynamic types.
package cell

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which case of the variant a Value holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is a read-only snapshot of a cell. The zero Value is empty.
type Value struct {
	kind Kind
	num  decimal.Decimal
	text string
	date time.Time
}

// None returns the empty value.
func None() Value { return Value{} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Float returns a numeric value from a binary float, using the shortest
// decimal representation that round-trips to f.
func Float(f float64) Value {
	return Number(decimal.NewFromFloat(f))
}

// Int returns a numeric value holding an integer.
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// Text returns a textual value. The text is stored as-is, untrimmed.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Date returns a date value.
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: t}
}

// Kind reports which case v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v holds no value.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Number returns the numeric payload and true when v is a number.
func (v Value) Number() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the textual payload and true when v is text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Date returns the date payload and true when v is a date.
func (v Value) Date() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// String renders v the way a plain-text field shows it. Numbers keep only the
// digits they carry ("500", "1234.5"), dates render with their clock
// ("2024-03-05 00:00:00") and the empty value renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindText:
		return v.text
	case KindDate:
		return v.date.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
