package server

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	testMapping = `{"fields": {"total": {"sheet": "Sheet1", "cell": "B1", "format": "currency"}}}`
	testCoords  = `{"page_1": {"total": {"x": 100, "y": 200}}}`
)

type testFiles struct {
	workbook []byte
	template []byte
}

func newTestServer(t *testing.T) (*Server, testFiles) {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DefaultMappingPath = filepath.Join(dir, "mapping.json")
	cfg.DefaultCoordsPath = filepath.Join(dir, "coordinates.json")
	if err := os.WriteFile(cfg.DefaultMappingPath, []byte(testMapping), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DefaultCoordsPath, []byte(testCoords), 0644); err != nil {
		t.Fatal(err)
	}

	wb := excelize.NewFile()
	defer wb.Close()
	if err := wb.SetCellValue("Sheet1", "B1", 500); err != nil {
		t.Fatal(err)
	}
	var wbuf bytes.Buffer
	if err := wb.Write(&wbuf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	var pbuf bytes.Buffer
	if err := pdf.Output(&pbuf); err != nil {
		t.Fatalf("creating template: %v", err)
	}

	return New(cfg, nil), testFiles{workbook: wbuf.Bytes(), template: pbuf.Bytes()}
}

type part struct {
	field    string
	filename string // empty for plain form values
	content  []byte
}

func postForm(t *testing.T, h http.Handler, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename == "" {
			if err := mw.WriteField(p.field, string(p.content)); err != nil {
				t.Fatal(err)
			}
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(p.content)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, s.cfg.DefaultMappingPath) {
		t.Error("form does not show the default mapping path")
	}
	if !strings.Contains(body, "limited to 50 MB") {
		t.Error("form does not show the download limit")
	}
	if strings.Contains(body, `class="error"`) {
		t.Error("fresh form shows an error")
	}
}

func TestGenerate(t *testing.T) {
	s, files := newTestServer(t)
	rec := postForm(t, s.Handler(),
		part{"workbook", "Q3 Estimate.xlsx", files.workbook},
		part{"template_pdf", "cover.pdf", files.template},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	disp, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || disp != "attachment" || params["filename"] != DownloadName {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("response is not a PDF")
	}
}

func TestGenerateFromURLs(t *testing.T) {
	s, files := newTestServer(t)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/estimate.xlsx":
			w.Write(files.workbook)
		case "/cover.pdf":
			w.Write(files.template)
		case "/coords.json":
			io.WriteString(w, `{"page_1": {"total": {"x": 300, "y": 400, "align": "right"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer remote.Close()

	rec := postForm(t, s.Handler(),
		part{"workbook_url", "", []byte(remote.URL + "/estimate.xlsx")},
		part{"template_pdf_url", "", []byte("  " + remote.URL + "/cover.pdf  ")},
		part{"coords_url", "", []byte(remote.URL + "/coords.json")},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateRejectsInput(t *testing.T) {
	s, files := newTestServer(t)
	tests := []struct {
		name    string
		parts   []part
		wantMsg string
	}{
		{
			name:    "missing workbook",
			parts:   []part{{"template_pdf", "cover.pdf", files.template}},
			wantMsg: "Excel workbook is required (upload a file or provide a URL).",
		},
		{
			name: "missing template",
			parts: []part{
				{"workbook", "estimate.xlsx", files.workbook},
			},
			wantMsg: "Template PDF is required (upload a file or provide a URL).",
		},
		{
			name: "wrong extension",
			parts: []part{
				{"workbook", "estimate.xls", files.workbook},
				{"template_pdf", "cover.pdf", files.template},
			},
			wantMsg: "Excel workbook must be one of: .xlsx.",
		},
		{
			name: "bad url scheme",
			parts: []part{
				{"workbook_url", "", []byte("ftp://example.com/estimate.xlsx")},
				{"template_pdf", "cover.pdf", files.template},
			},
			wantMsg: "Excel workbook URL must start with http:// or https://.",
		},
		{
			name: "corrupt workbook",
			parts: []part{
				{"workbook", "estimate.xlsx", []byte("not a zip")},
				{"template_pdf", "cover.pdf", files.template},
			},
			wantMsg: "Excel workbook could not be read.",
		},
		{
			name: "corrupt template",
			parts: []part{
				{"workbook", "estimate.xlsx", files.workbook},
				{"template_pdf", "cover.pdf", []byte("not a pdf")},
			},
			wantMsg: "Template PDF could not be read.",
		},
		{
			name: "invalid uploaded mapping",
			parts: []part{
				{"workbook", "estimate.xlsx", files.workbook},
				{"template_pdf", "cover.pdf", files.template},
				{"mapping_json", "mapping.json", []byte("{")},
			},
			wantMsg: "Mapping JSON is invalid: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, s.Handler(), tt.parts...)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body does not contain %q:\n%s", tt.wantMsg, rec.Body.String())
			}
		})
	}
}

func TestGenerateBrokenDefaultsIsServerError(t *testing.T) {
	s, files := newTestServer(t)
	if err := os.WriteFile(s.cfg.DefaultCoordsPath, []byte(`{"page_1": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	rec := postForm(t, s.Handler(),
		part{"workbook", "estimate.xlsx", files.workbook},
		part{"template_pdf", "cover.pdf", files.template},
	)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), s.cfg.DefaultCoordsPath) {
		t.Error("server error leaks the config path")
	}
}

func TestGenerateUploadTooLarge(t *testing.T) {
	s, files := newTestServer(t)
	s.cfg.MaxUploadMB = 0.001
	rec := postForm(t, s.Handler(),
		part{"workbook", "estimate.xlsx", files.workbook},
		part{"template_pdf", "cover.pdf", files.template},
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if _, err := uuid.Parse(rec.Header().Get(requestIDHeader)); err != nil {
		t.Errorf("generated request id %q: %v", rec.Header().Get(requestIDHeader), err)
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got == "<script>" {
		t.Error("invalid incoming request id was reused")
	}
}
