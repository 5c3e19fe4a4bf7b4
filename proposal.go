// Package proposal fills a fixed-layout PDF proposal template with values
// read from an estimating workbook.
//
// A generation loads the field mapping and coordinates configs, reads and
// formats every mapped cell, and draws the values onto the template pages
// configured in the coordinates. Bad or missing cells never abort a run: they
// print as the mapping's missing-value sentinel. Only structural failures,
// such as an unreadable config, workbook or template, are returned as errors.
//
// Basic usage:
//
//	g := proposal.New(proposal.WithMappingPath("configs/mapping.json"),
//	    proposal.WithCoordinatesPath("configs/coordinates.json"))
//	res, err := g.GenerateFile(ctx, proposal.Request{
//	    WorkbookPath: "estimate.xlsx",
//	    TemplatePath: "template.pdf",
//	})
package proposal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/fields"
	"github.com/cstone-estimating/proposal/layout"
	"github.com/cstone-estimating/proposal/pageops"
)

// Generator produces filled proposals. It holds no per-run state and is safe
// for concurrent use.
type Generator struct {
	mappingPath string
	coordsPath  string
	logger      *zap.Logger
}

// Request names the inputs of one generation. Empty config paths fall back to
// the Generator's defaults.
type Request struct {
	WorkbookPath    string
	TemplatePath    string
	OutputPath      string // GenerateFile only; defaults to "<template>-filled.pdf"
	MappingPath     string
	CoordinatesPath string
}

// Result describes a finished generation.
type Result struct {
	Pages    int
	Overlaid int
	Fields   int
	Values   fields.Values
	Output   string // path written by GenerateFile
	Bytes    int    // GenerateFile only
}

// Generate writes the filled proposal for req to w.
func (g *Generator) Generate(ctx context.Context, w io.Writer, req Request) (Result, error) {
	const op = "Generate"
	start := time.Now()

	mapping, coords, err := g.loadConfigs(op, req.MappingPath, req.CoordinatesPath)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if req.WorkbookPath == "" {
		return Result{}, newError(op, "workbook", ErrWorkbook, errors.New("no workbook path"))
	}
	values, err := fields.Build(req.WorkbookPath, mapping, g.logger)
	if err != nil {
		return Result{}, newError(op, "workbook", ErrWorkbook, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tpl, err := g.loadTemplate(op, req.TemplatePath)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	stats, err := pageops.Fill(w, tpl, coords, values, g.logger)
	if err != nil {
		if errors.Is(err, pageops.ErrInvalidTemplate) {
			return Result{}, newError(op, "template", ErrTemplate, err)
		}
		return Result{}, newError(op, "output", ErrOutput, err)
	}

	g.logger.Info("proposal generated",
		zap.String("workbook", req.WorkbookPath),
		zap.String("template", req.TemplatePath),
		zap.Int("pages", stats.Pages),
		zap.Int("overlaid", stats.Overlaid),
		zap.Int("fields", stats.Fields),
		zap.Duration("elapsed", time.Since(start)))

	return Result{
		Pages:    stats.Pages,
		Overlaid: stats.Overlaid,
		Fields:   stats.Fields,
		Values:   values,
	}, nil
}

// GenerateFile writes the filled proposal for req to req.OutputPath, creating
// parent directories as needed. The result records the path written.
func (g *Generator) GenerateFile(ctx context.Context, req Request) (Result, error) {
	out := req.OutputPath
	if out == "" {
		out = DefaultOutputPath(req.TemplatePath)
	}

	var buf bytes.Buffer
	res, err := g.Generate(ctx, &buf, req)
	if err != nil {
		return Result{}, err
	}
	if err := writeFile(out, buf.Bytes()); err != nil {
		return Result{}, newError("GenerateFile", "output", ErrOutput, err)
	}
	res.Output = out
	res.Bytes = buf.Len()
	g.logger.Info("proposal written", zap.String("path", out), zap.Int("bytes", buf.Len()))
	return res, nil
}

// CalibrationRequest names the inputs of a calibration run.
type CalibrationRequest struct {
	TemplatePath    string
	CoordinatesPath string // defaults to the Generator's coordinates path
	OutputPath      string // CalibrateFile only; defaults to "calibration.pdf"
	Options         pageops.CalibrationOptions
}

// DefaultCalibrationPath is the output of CalibrateFile when none is given.
const DefaultCalibrationPath = "calibration.pdf"

// Calibrate writes the template to w with a coordinate grid and a marker at
// every configured field.
func (g *Generator) Calibrate(ctx context.Context, w io.Writer, req CalibrationRequest) error {
	const op = "Calibrate"
	coords, err := g.loadCoordinates(op, req.CoordinatesPath)
	if err != nil {
		return err
	}
	tpl, err := g.loadTemplate(op, req.TemplatePath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pageops.Calibrate(w, tpl, coords, req.Options); err != nil {
		if errors.Is(err, pageops.ErrInvalidTemplate) {
			return newError(op, "template", ErrTemplate, err)
		}
		return newError(op, "output", ErrOutput, err)
	}
	return nil
}

// CalibrateFile is like Calibrate but writes to req.OutputPath and returns the
// path written.
func (g *Generator) CalibrateFile(ctx context.Context, req CalibrationRequest) (string, error) {
	out := req.OutputPath
	if out == "" {
		out = DefaultCalibrationPath
	}
	var buf bytes.Buffer
	if err := g.Calibrate(ctx, &buf, req); err != nil {
		return "", err
	}
	if err := writeFile(out, buf.Bytes()); err != nil {
		return "", newError("CalibrateFile", "output", ErrOutput, err)
	}
	g.logger.Info("calibration written", zap.String("path", out), zap.Int("bytes", buf.Len()))
	return out, nil
}

// DefaultOutputPath returns "<dir>/<stem>-filled.pdf" for a template path.
func DefaultOutputPath(templatePath string) string {
	dir, base := filepath.Split(templatePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"-filled.pdf")
}

func (g *Generator) loadConfigs(op, mappingPath, coordsPath string) (*fields.Mapping, layout.Coordinates, error) {
	if mappingPath == "" {
		mappingPath = g.mappingPath
	}
	if mappingPath == "" {
		return nil, nil, newError(op, "mapping", ErrConfig, errors.New("no mapping config path"))
	}
	mapping, err := fields.LoadMapping(mappingPath)
	if err != nil {
		return nil, nil, newError(op, "mapping", ErrConfig, err)
	}
	coords, err := g.loadCoordinates(op, coordsPath)
	if err != nil {
		return nil, nil, err
	}
	return mapping, coords, nil
}

func (g *Generator) loadCoordinates(op, path string) (layout.Coordinates, error) {
	if path == "" {
		path = g.coordsPath
	}
	if path == "" {
		return nil, newError(op, "coordinates", ErrConfig, errors.New("no coordinates config path"))
	}
	coords, err := layout.LoadCoordinates(path)
	if err != nil {
		return nil, newError(op, "coordinates", ErrConfig, err)
	}
	return coords, nil
}

func (g *Generator) loadTemplate(op, path string) (*pageops.Template, error) {
	if path == "" {
		return nil, newError(op, "template", ErrTemplate, errors.New("no template path"))
	}
	tpl, err := pageops.LoadTemplate(path)
	if err != nil {
		return nil, newError(op, "template", ErrTemplate, err)
	}
	return tpl, nil
}

// writeFile writes data to path, creating parent directories. A partially
// written file is removed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
