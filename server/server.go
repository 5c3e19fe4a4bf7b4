// Package server is the proposal upload service: a form that accepts a
// workbook, a template and optional config overrides, by upload or URL, and
// answers with the filled proposal PDF.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal"
	"github.com/cstone-estimating/proposal/fetch"
)

// DownloadName is the file name the filled proposal is served under.
const DownloadName = "Cornerstone Proposal - Filled.pdf"

// multipartMemory is the part of an upload form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server serves the upload form and the generate endpoint.
type Server struct {
	cfg     *Config
	gen     *proposal.Generator
	fetcher *fetch.Fetcher
	logger  *zap.Logger
}

// New creates a Server. A nil logger discards everything.
func New(cfg *Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg: cfg,
		gen: proposal.New(
			proposal.WithMappingPath(cfg.DefaultMappingPath),
			proposal.WithCoordinatesPath(cfg.DefaultCoordsPath),
			proposal.WithLogger(logger),
		),
		fetcher: fetch.New(
			fetch.WithClient(&http.Client{Timeout: cfg.DownloadTimeout}),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxMB(cfg.MaxDownloadMB),
			fetch.WithLogger(logger),
		),
		logger: logger,
	}
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/generate", s.handleGenerate)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.cfg.Listen))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type indexData struct {
	DefaultMappingPath string
	DefaultCoordsPath  string
	MaxDownloadMB      float64
	Error              string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, "")
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexData{
		DefaultMappingPath: s.cfg.DefaultMappingPath,
		DefaultCoordsPath:  s.cfg.DefaultCoordsPath,
		MaxDownloadMB:      s.cfg.MaxDownloadMB,
		Error:              msg,
	})
	if err != nil {
		s.logger.Error("rendering form", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// formInput collects the upload and URL fields of one input.
func formInput(r *http.Request, fileField, urlField string) (fetch.Input, func()) {
	in := fetch.Input{URL: strings.TrimSpace(r.FormValue(urlField))}
	f, hdr, err := r.FormFile(fileField)
	if err != nil {
		return in, func() {}
	}
	in.File = f
	in.Filename = hdr.Filename
	return in, func() { f.Close() }
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger.With(zap.String("request_id", requestIDFrom(ctx)))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.renderForm(w, r, http.StatusBadRequest, uploadTooLarge(s.cfg.MaxUploadMB))
			return
		}
		s.renderForm(w, r, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	dir, err := os.MkdirTemp("", "proposal-")
	if err != nil {
		log.Error("creating work dir", zap.Error(err))
		s.renderForm(w, r, http.StatusInternalServerError, "Proposal generation failed. Please try again.")
		return
	}
	defer os.RemoveAll(dir)

	inputs := []struct {
		src       fetch.Source
		fileField string
		urlField  string
		path      *string
	}{
		{fetch.Workbook, "workbook", "workbook_url", new(string)},
		{fetch.Template, "template_pdf", "template_pdf_url", new(string)},
		{fetch.Mapping, "mapping_json", "mapping_url", new(string)},
		{fetch.Coordinates, "coords_json", "coords_url", new(string)},
	}
	for _, in := range inputs {
		input, done := formInput(r, in.fileField, in.urlField)
		p, err := s.fetcher.Save(ctx, in.src, input, dir)
		done()
		if err != nil {
			if fetch.IsInputError(err) {
				log.Info("input rejected", zap.String("input", in.src.Label), zap.Error(err))
				s.renderForm(w, r, http.StatusBadRequest, err.Error())
				return
			}
			log.Error("saving input", zap.String("input", in.src.Label), zap.Error(err))
			s.renderForm(w, r, http.StatusInternalServerError, "Proposal generation failed. Please try again.")
			return
		}
		*in.path = p
	}

	req := proposal.Request{
		WorkbookPath:    *inputs[0].path,
		TemplatePath:    *inputs[1].path,
		MappingPath:     *inputs[2].path,
		CoordinatesPath: *inputs[3].path,
	}
	var buf bytes.Buffer
	res, err := s.gen.Generate(ctx, &buf, req)
	if err != nil {
		status, msg := generateFailure(err, req)
		if status == http.StatusInternalServerError {
			log.Error("generation failed", zap.Error(err))
		} else {
			log.Info("generation rejected", zap.Error(err))
		}
		s.renderForm(w, r, status, msg)
		return
	}

	log.Info("proposal served", zap.Int("pages", res.Pages), zap.Int("bytes", buf.Len()))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": DownloadName}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// generateFailure maps a generation error to a status and a user-facing
// message. Failures caused by what the user supplied are client errors;
// a broken default config is a server error.
func generateFailure(err error, req proposal.Request) (int, string) {
	var perr *proposal.Error
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, "Proposal generation failed. Please try again."
	}
	switch perr.Input {
	case "workbook":
		return http.StatusBadRequest, "Excel workbook could not be read. Make sure it is a valid .xlsx file."
	case "template":
		return http.StatusBadRequest, "Template PDF could not be read. Make sure it is a valid PDF."
	case "mapping":
		if req.MappingPath != "" {
			return http.StatusBadRequest, "Mapping JSON is invalid: " + causeOf(perr) + "."
		}
	case "coordinates":
		if req.CoordinatesPath != "" {
			return http.StatusBadRequest, "Coordinates JSON is invalid: " + causeOf(perr) + "."
		}
	}
	return http.StatusInternalServerError, "Proposal generation failed. Please try again."
}

func causeOf(e *proposal.Error) string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

func uploadTooLarge(mb float64) string {
	return "Upload exceeds " + strconv.FormatFloat(mb, 'f', 0, 64) + " MB limit."
}
