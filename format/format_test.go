package format

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cstone-estimating/proposal/cell"
)

const missing = "N/A"

func TestCurrencyEquivalentInputs(t *testing.T) {
	inputs := []cell.Value{
		cell.Float(1234.5),
		cell.Text("1234.50"),
		cell.Text("$1,234.50"),
		cell.Text("  $1,234.5 "),
		cell.Number(decimal.RequireFromString("1234.500")),
	}
	for _, in := range inputs {
		if got := Currency(in, missing); got != "$1,234.50" {
			t.Errorf("Currency(%v) = %q, want %q", in, got, "$1,234.50")
		}
	}
}

func TestCurrencyRounding(t *testing.T) {
	tests := []struct {
		in   cell.Value
		want string
	}{
		{cell.Float(2.005), "$2.01"},
		{cell.Float(2.004), "$2.00"},
		{cell.Float(0.125), "$0.13"},
		{cell.Text("1.005"), "$1.01"},
		{cell.Int(500), "$500.00"},
		{cell.Int(0), "$0.00"},
		{cell.Float(1234567.891), "$1,234,567.89"},
		{cell.Float(-1234.565), "$-1,234.57"},
		{cell.Text("999999999999999999999.999"), "$1,000,000,000,000,000,000,000.00"},
	}
	for _, tt := range tests {
		if got := Currency(tt.in, missing); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCurrencyUnparseable(t *testing.T) {
	inputs := []cell.Value{
		cell.None(),
		cell.Text(""),
		cell.Text("$"),
		cell.Text("TBD"),
		cell.Text("12abc"),
		cell.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
	}
	for _, in := range inputs {
		if got := Currency(in, missing); got != missing {
			t.Errorf("Currency(%v) = %q, want missing", in, got)
		}
	}
}

func TestDateFormats(t *testing.T) {
	inputs := []cell.Value{
		cell.Text("2024-03-05"),
		cell.Text("03/05/2024"),
		cell.Text("03/05/24"),
		cell.Text("3/5/2024"),
		cell.Text(" 2024-03-05 "),
		cell.Date(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)),
	}
	for _, in := range inputs {
		if got := DateCover(in, missing); got != "MARCH 05, 2024" {
			t.Errorf("DateCover(%v) = %q", in, got)
		}
		if got := DatePlan(in, missing); got != "March 5, 2024" {
			t.Errorf("DatePlan(%v) = %q", in, got)
		}
	}
}

func TestDateTwoDigitYearPivot(t *testing.T) {
	if got := DatePlan(cell.Text("01/02/69"), missing); got != "January 2, 1969" {
		t.Errorf("got %q", got)
	}
	if got := DatePlan(cell.Text("01/02/68"), missing); got != "January 2, 2068" {
		t.Errorf("got %q", got)
	}
}

func TestDateUnparseable(t *testing.T) {
	inputs := []cell.Value{
		cell.None(),
		cell.Text(""),
		cell.Text("March 5"),
		cell.Text("2024/03/05"),
		cell.Text("13/05/2024"),
		cell.Int(45356),
	}
	for _, in := range inputs {
		if got := DateCover(in, missing); got != missing {
			t.Errorf("DateCover(%v) = %q, want missing", in, got)
		}
		if got := DatePlan(in, missing); got != missing {
			t.Errorf("DatePlan(%v) = %q, want missing", in, got)
		}
	}
}

func TestInitials(t *testing.T) {
	preparedBy := map[string]string{"JD": "Jane Doe"}
	tests := []struct {
		in   cell.Value
		want string
	}{
		{cell.Text("JD"), "Jane Doe"},
		{cell.Text(" JD "), "Jane Doe"},
		{cell.Text("XY"), "XY"},
		{cell.Text(""), missing},
		{cell.Text("   "), missing},
		{cell.None(), missing},
		{cell.Int(42), "42"},
	}
	for _, tt := range tests {
		if got := Initials(tt.in, preparedBy, missing); got != tt.want {
			t.Errorf("Initials(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   cell.Value
		want string
	}{
		{cell.Text("  Acme Builders "), "Acme Builders"},
		{cell.Text(""), missing},
		{cell.Text("\t\n"), missing},
		{cell.None(), missing},
		{cell.Int(500), "500"},
		{cell.Float(1234.5), "1234.5"},
		{cell.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), "2024-03-05 00:00:00"},
	}
	for _, tt := range tests {
		if got := Text(tt.in, missing); got != tt.want {
			t.Errorf("Text(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValueDispatch(t *testing.T) {
	opts := Options{PreparedBy: map[string]string{"JD": "Jane Doe"}, Missing: missing}
	tests := []struct {
		kind Kind
		in   cell.Value
		want string
	}{
		{KindText, cell.Text(" x "), "x"},
		{KindCurrency, cell.Int(500), "$500.00"},
		{KindDateCover, cell.Text("2024-03-05"), "MARCH 05, 2024"},
		{KindDatePlan, cell.Text("2024-03-05"), "March 5, 2024"},
		{KindInitials, cell.Text("JD"), "Jane Doe"},
	}
	for _, tt := range tests {
		if got := Value(tt.in, tt.kind, opts); got != tt.want {
			t.Errorf("Value(%v, %s) = %q, want %q", tt.in, tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"text", "currency", "date_cover", "date_plan", "initials"} {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
		if k.String() != name {
			t.Errorf("round trip %q -> %q", name, k.String())
		}
	}

	if k, err := ParseKind(""); err != nil || k != KindText {
		t.Errorf("ParseKind(\"\") = %v, %v; want text", k, err)
	}

	if _, err := ParseKind("percent"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(percent) error = %v, want ErrUnknownKind", err)
	}
}

func TestKindJSON(t *testing.T) {
	var spec struct {
		Format Kind `json:"format"`
	}
	if err := json.Unmarshal([]byte(`{"format":"date_plan"}`), &spec); err != nil {
		t.Fatal(err)
	}
	if spec.Format != KindDatePlan {
		t.Errorf("got %v", spec.Format)
	}
	if err := json.Unmarshal([]byte(`{"format":"Currency"}`), &spec); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
