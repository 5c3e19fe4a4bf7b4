// Command proposal-mcp serves the proposal tools over MCP on stdio.
//
// # Configuration for Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "proposal": {
//	      "command": "proposal-mcp",
//	      "args": ["-mapping", "/srv/proposal/mapping.json", "-coords", "/srv/proposal/coordinates.json"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_proposal: fill the template from a workbook
//   - calibrate_template: draw the calibration grid and field markers
//   - format_value: format one value as a mapped cell would be
//   - inspect_template: page count and page sizes of a template
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal"
	"github.com/cstone-estimating/proposal/internal/logging"
	proposalmcp "github.com/cstone-estimating/proposal/mcp"
)

func main() {
	mapping := flag.String("mapping", "configs/mapping.json", "default field mapping JSON")
	coords := flag.String("coords", "configs/coordinates.json", "default field coordinates JSON")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	// Logs go to stderr; stdout carries the protocol.
	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "proposal-mcp: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := proposal.New(
		proposal.WithMappingPath(*mapping),
		proposal.WithCoordinatesPath(*coords),
		proposal.WithLogger(logger),
	)
	srv := proposalmcp.NewServer(gen, logger)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("proposal-mcp: server stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "proposal-mcp: %v\n", err)
		os.Exit(1)
	}
}
