// Package mcp exposes proposal generation, calibration and config debugging
// as Model Context Protocol tools.
//
// # Usage with Claude Desktop
//
// Add to your claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "proposal": {
//	      "command": "proposal-mcp",
//	      "args": ["-mapping", "/path/to/mapping.json", "-coords", "/path/to/coordinates.json"]
//	    }
//	  }
//	}
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "proposal-mcp"
	Version = "1.0.0"
)

// Tools holds what the tool handlers need.
type Tools struct {
	gen    *proposal.Generator
	logger *zap.Logger
}

// NewTools creates the tool set around gen. A nil logger discards everything.
func NewTools(gen *proposal.Generator, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{gen: gen, logger: logger}
}

// NewServer creates an MCP server with every proposal tool registered.
func NewServer(gen *proposal.Generator, logger *zap.Logger) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	NewTools(gen, logger).Register(srv)
	return srv
}

// Register adds all tools to srv.
func (t *Tools) Register(srv *mcp.Server) {
	t.registerGenerate(srv)
	t.registerCalibrate(srv)
	t.registerFormatValue(srv)
	t.registerInspect(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

// addTool registers a handler that decodes its arguments into In and answers
// with the JSON encoding of its result. Handler errors become tool errors.
func addTool[In any](t *Tools, srv *mcp.Server, tool *mcp.Tool, handle func(context.Context, *In) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := new(In)
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, in); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		out, err := handle(ctx, in)
		if err != nil {
			t.logger.Info("tool failed", zap.String("tool", tool.Name), zap.Error(err))
			return toolError(err), nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res
}
