// Command proposal-fill fills the proposal template with values from an
// estimating workbook and prints the path of the PDF it wrote.
//
// Usage:
//
//	proposal-fill -workbook estimate.xlsx -template template.pdf
//	proposal-fill -workbook estimate.xlsx -template template.pdf -output out/proposal.pdf \
//	    -mapping configs/mapping.json -coords configs/coordinates.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal"
	"github.com/cstone-estimating/proposal/internal/logging"
)

func main() {
	workbook := flag.String("workbook", "", "path to the estimating workbook (.xlsx)")
	template := flag.String("template", "", "path to the proposal template PDF")
	output := flag.String("output", "", "output PDF path (default <template>-filled.pdf)")
	mapping := flag.String("mapping", "configs/mapping.json", "field mapping JSON")
	coords := flag.String("coords", "configs/coordinates.json", "field coordinates JSON")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	if *workbook == "" || *template == "" {
		fmt.Fprintln(os.Stderr, "usage: proposal-fill -workbook <file.xlsx> -template <file.pdf> [-output <file.pdf>]")
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "proposal-fill: %v\n", err)
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
	res, err := gen.GenerateFile(ctx, proposal.Request{
		WorkbookPath: *workbook,
		TemplatePath: *template,
		OutputPath:   *output,
	})
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "proposal-fill: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(res.Output)
}
