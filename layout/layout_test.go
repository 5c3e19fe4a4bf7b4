package layout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/google/go-cmp/cmp"

	"github.com/cstone-estimating/proposal/textfit"
)

func TestParseCoordinates(t *testing.T) {
	coords, err := ParseCoordinates([]byte(`{
		"_comment": "calibrated against rev C of the template",
		"page_1": {
			"total": {"x": 100, "y": 200, "font": "Helvetica", "size": 10},
			"client": {"x": 306, "y": 700, "align": "center", "max_width": 250, "min_size": 7}
		},
		"page_3": {
			"date": {"x": 540, "y": 60, "font": "times-bold", "align": "right"}
		}
	}`))
	if err != nil {
		t.Fatalf("ParseCoordinates: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3}, coords.Pages()); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}

	helvetica, _ := textfit.LookupFont("Helvetica")
	timesBold, _ := textfit.LookupFont("Times-Bold")
	want := Coordinates{
		1: {
			"total":  {X: 100, Y: 200, Font: helvetica, Size: 10, MinSize: 8},
			"client": {X: 306, Y: 700, Font: helvetica, Size: 10, Align: AlignCenter, MaxWidth: 250, MinSize: 7},
		},
		3: {
			"date": {X: 540, Y: 60, Font: timesBold, Size: 10, Align: AlignRight, MinSize: 8},
		},
	}
	if diff := cmp.Diff(want, coords); diff != "" {
		t.Errorf("coordinates (-want +got):\n%s", diff)
	}

	if _, ok := coords.Page(2); ok {
		t.Error("page 2 should not be configured")
	}
}

func TestParseCoordinatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    string
		wantErr error
	}{
		{"malformed", `{"page_1": `, "parsing coordinates", nil},
		{"not an object", `null`, "JSON object", nil},
		{"bad page key", `{"page_one": {}}`, `"page_one"`, nil},
		{"zero page", `{"page_0": {}}`, `"page_0"`, nil},
		{"missing y", `{"page_1": {"total": {"x": 1}}}`, "page_1.total", nil},
		{"unknown align", `{"page_1": {"total": {"x": 1, "y": 2, "align": "justify"}}}`, "justify", ErrUnknownAlign},
		{"unknown font", `{"page_1": {"total": {"x": 1, "y": 2, "font": "Papyrus"}}}`, "Papyrus", textfit.ErrUnknownFont},
		{"negative width", `{"page_1": {"total": {"x": 1, "y": 2, "max_width": -5}}}`, "max_width", nil},
		{"zero size", `{"page_1": {"total": {"x": 1, "y": 2, "size": 0}}}`, "size", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCoordinates([]byte(tt.json))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v is not %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinates.json")
	if err := os.WriteFile(path, []byte(`{"page_2": {"a": {"x": 1, "y": 2}}}`), 0644); err != nil {
		t.Fatal(err)
	}
	coords, err := LoadCoordinates(path)
	if err != nil {
		t.Fatalf("LoadCoordinates: %v", err)
	}
	if _, ok := coords.Page(2); !ok {
		t.Error("page 2 missing")
	}
	if _, err := LoadCoordinates(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

// renderContent draws page onto a fresh uncompressed letter page and returns
// the document bytes.
func renderContent(t *testing.T, page Page, values map[string]string) (string, int) {
	t.Helper()
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetCompression(false)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: 612, Ht: 792})
	n := NewRenderer(nil).RenderPage(pdf, 792, page, values)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	return buf.String(), n
}

func TestRenderPageAlignment(t *testing.T) {
	helvetica, _ := textfit.LookupFont("Helvetica")
	page := Page{
		"left":   {X: 100, Y: 200, Font: helvetica, Size: 10, MinSize: 8},
		"right":  {X: 300, Y: 300, Font: helvetica, Size: 10, Align: AlignRight, MinSize: 8},
		"center": {X: 300, Y: 400, Font: helvetica, Size: 10, Align: AlignCenter, MinSize: 8},
	}
	values := map[string]string{"left": "$500.00", "right": "$500.00", "center": "$500.00"}

	content, n := renderContent(t, page, values)
	if n != 3 {
		t.Errorf("drew %d fields, want 3", n)
	}
	// "$500.00" is 36.14pt wide in 10pt Helvetica.
	for _, op := range []string{
		"BT 100.00 200.00 Td ($500.00) Tj ET",
		"BT 263.86 300.00 Td ($500.00) Tj ET",
		"BT 281.93 400.00 Td ($500.00) Tj ET",
	} {
		if !strings.Contains(content, op) {
			t.Errorf("content lacks %q", op)
		}
	}
}

func TestRenderPageSkipsEmptyAndAbsent(t *testing.T) {
	helvetica, _ := textfit.LookupFont("Helvetica")
	page := Page{
		"blank":    {X: 10, Y: 10, Font: helvetica, Size: 10, MinSize: 8},
		"unmapped": {X: 20, Y: 20, Font: helvetica, Size: 10, MinSize: 8},
		"shown":    {X: 30, Y: 30, Font: helvetica, Size: 10, MinSize: 8},
	}
	content, n := renderContent(t, page, map[string]string{"blank": "", "shown": "ok"})
	if n != 1 {
		t.Errorf("drew %d fields, want 1", n)
	}
	if got := strings.Count(content, " Tj ET"); got != 1 {
		t.Errorf("found %d text operators, want 1", got)
	}
}

func TestRenderPageFitsText(t *testing.T) {
	helvetica, _ := textfit.LookupFont("Helvetica")
	page := Page{
		"name": {X: 50, Y: 50, Font: helvetica, Size: 12, MaxWidth: 40, MinSize: 8},
	}
	content, _ := renderContent(t, page, map[string]string{"name": "Cornerstone Estimating Services"})
	if !strings.Contains(content, "...) Tj ET") {
		t.Error("expected truncated text with ellipsis")
	}
	if !strings.Contains(content, " 8.00 Tf") {
		t.Error("expected text drawn at the minimum size")
	}
}

func TestAnchor(t *testing.T) {
	if got := anchor(AlignLeft, 100, 40); got != 100 {
		t.Errorf("left = %v", got)
	}
	if got := anchor(AlignRight, 100, 40); got != 60 {
		t.Errorf("right = %v", got)
	}
	if got := anchor(AlignCenter, 100, 40); got != 80 {
		t.Errorf("center = %v", got)
	}
}
