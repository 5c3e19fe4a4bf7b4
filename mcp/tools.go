package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"github.com/cstone-estimating/proposal"
	"github.com/cstone-estimating/proposal/cell"
	"github.com/cstone-estimating/proposal/format"
	"github.com/cstone-estimating/proposal/pageops"
)

// --- generate_proposal ---

type generateArgs struct {
	Workbook    string `json:"workbook"`
	Template    string `json:"template"`
	Output      string `json:"output"`
	Mapping     string `json:"mapping"`
	Coordinates string `json:"coordinates"`
}

type generateResult struct {
	Output   string            `json:"output"`
	Bytes    int               `json:"bytes"`
	Pages    int               `json:"pages"`
	Overlaid int               `json:"overlaid"`
	Fields   int               `json:"fields"`
	Values   map[string]string `json:"values"`
}

func (t *Tools) registerGenerate(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "generate_proposal",
		Description: "Fill the proposal template PDF with values read from an estimating workbook and write the result to a file. Returns the output path and the formatted field values.",
		InputSchema: inputSchema(map[string]any{
			"workbook":    prop("string", "Path to the .xlsx workbook"),
			"template":    prop("string", "Path to the template PDF"),
			"output":      prop("string", "Output PDF path. Defaults to <template>-filled.pdf"),
			"mapping":     prop("string", "Mapping JSON path. Defaults to the server's mapping"),
			"coordinates": prop("string", "Coordinates JSON path. Defaults to the server's coordinates"),
		}, []string{"workbook", "template"}),
	}
	addTool(t, srv, tool, func(ctx context.Context, a *generateArgs) (any, error) {
		if a.Workbook == "" || a.Template == "" {
			return nil, fmt.Errorf("workbook and template are required")
		}
		res, err := t.gen.GenerateFile(ctx, proposal.Request{
			WorkbookPath:    a.Workbook,
			TemplatePath:    a.Template,
			OutputPath:      a.Output,
			MappingPath:     a.Mapping,
			CoordinatesPath: a.Coordinates,
		})
		if err != nil {
			return nil, err
		}
		return generateResult{
			Output:   res.Output,
			Bytes:    res.Bytes,
			Pages:    res.Pages,
			Overlaid: res.Overlaid,
			Fields:   res.Fields,
			Values:   res.Values,
		}, nil
	})
}

// --- calibrate_template ---

type calibrateArgs struct {
	Template    string  `json:"template"`
	Coordinates string  `json:"coordinates"`
	Output      string  `json:"output"`
	Grid        float64 `json:"grid"`
	NoGrid      bool    `json:"no_grid"`
	NoLabels    bool    `json:"no_labels"`
}

func (t *Tools) registerCalibrate(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "calibrate_template",
		Description: "Draw a coordinate grid and a labeled crosshair at every configured field onto the template, for tuning the coordinates config.",
		InputSchema: inputSchema(map[string]any{
			"template":    prop("string", "Path to the template PDF"),
			"coordinates": prop("string", "Coordinates JSON path. Defaults to the server's coordinates"),
			"output":      prop("string", "Output PDF path"),
			"grid":        prop("number", "Grid spacing in points (default 50)"),
			"no_grid":     prop("boolean", "Omit the grid"),
			"no_labels":   prop("boolean", "Omit field name labels"),
		}, []string{"template", "output"}),
	}
	addTool(t, srv, tool, func(ctx context.Context, a *calibrateArgs) (any, error) {
		if a.Template == "" || a.Output == "" {
			return nil, fmt.Errorf("template and output are required")
		}
		if a.Grid == 0 {
			a.Grid = pageops.DefaultGrid
		}
		out, err := t.gen.CalibrateFile(ctx, proposal.CalibrationRequest{
			TemplatePath:    a.Template,
			CoordinatesPath: a.Coordinates,
			OutputPath:      a.Output,
			Options: pageops.CalibrationOptions{
				Grid:     a.Grid,
				NoGrid:   a.NoGrid,
				NoLabels: a.NoLabels,
			},
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"output": out}, nil
	})
}

// --- format_value ---

type formatArgs struct {
	Value         json.RawMessage   `json:"value"`
	Format        string            `json:"format"`
	MissingValue  string            `json:"missing_value"`
	PreparedByMap map[string]string `json:"prepared_by_map"`
}

func (t *Tools) registerFormatValue(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "format_value",
		Description: "Format a single value the way a mapped workbook cell would be printed. Useful for checking a mapping config.",
		InputSchema: inputSchema(map[string]any{
			"value": map[string]any{
				"type":        []string{"string", "number", "null"},
				"description": "Raw cell value: a number, a text such as \"$1,234.50\" or \"2024-03-05\", or null for an empty cell",
			},
			"format": map[string]any{
				"type":        "string",
				"enum":        []string{"text", "currency", "date_cover", "date_plan", "initials"},
				"description": "Format kind (default text)",
			},
			"missing_value":   prop("string", "Printed when the value cannot be formatted"),
			"prepared_by_map": prop("object", "Initials to printed label, for the initials format"),
		}, []string{"value"}),
	}
	addTool(t, srv, tool, func(_ context.Context, a *formatArgs) (any, error) {
		kind, err := format.ParseKind(a.Format)
		if err != nil {
			return nil, err
		}
		v, err := cellFromJSON(a.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"formatted": format.Value(v, kind, format.Options{
				PreparedBy: a.PreparedByMap,
				Missing:    a.MissingValue,
			}),
		}, nil
	})
}

// cellFromJSON maps a JSON scalar onto a cell value. Numbers stay exact.
func cellFromJSON(raw json.RawMessage) (cell.Value, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return cell.None(), nil
	}
	if s[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return cell.Value{}, fmt.Errorf("value: %w", err)
		}
		return cell.Text(text), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return cell.Value{}, fmt.Errorf("value must be a string, number or null")
	}
	return cell.Number(d), nil
}

// --- inspect_template ---

type inspectArgs struct {
	Template string `json:"template"`
}

func (t *Tools) registerInspect(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_template",
		Description: "Report the page count and the width and height in points of every page of a template PDF.",
		InputSchema: inputSchema(map[string]any{
			"template": prop("string", "Path to the template PDF"),
		}, []string{"template"}),
	}
	addTool(t, srv, tool, func(_ context.Context, a *inspectArgs) (any, error) {
		tpl, err := pageops.LoadTemplate(a.Template)
		if err != nil {
			return nil, err
		}
		sizes, err := tpl.PageSizes()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"pages": tpl.PageCount(),
			"sizes": sizes,
		}, nil
	})
}
