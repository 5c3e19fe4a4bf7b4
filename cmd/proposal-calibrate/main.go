// Command proposal-calibrate draws a coordinate grid and a marker at every
// configured field onto the proposal template, for tuning coordinates.json.
//
// Usage:
//
//	proposal-calibrate -template template.pdf
//	proposal-calibrate -template template.pdf -grid 25 -output grid.pdf
//	proposal-calibrate -template template.pdf -no-grid -no-labels
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
	"github.com/cstone-estimating/proposal/pageops"
)

func main() {
	template := flag.String("template", "", "path to the proposal template PDF")
	coords := flag.String("coords", "configs/coordinates.json", "field coordinates JSON")
	output := flag.String("output", proposal.DefaultCalibrationPath, "output PDF path")
	grid := flag.Float64("grid", pageops.DefaultGrid, "grid spacing in points")
	noGrid := flag.Bool("no-grid", false, "omit the grid")
	noLabels := flag.Bool("no-labels", false, "omit field name labels")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	if *template == "" {
		fmt.Fprintln(os.Stderr, "usage: proposal-calibrate -template <file.pdf> [-coords <file.json>] [-output <file.pdf>]")
		os.Exit(2)
	}
	if *grid <= 0 && !*noGrid {
		fmt.Fprintln(os.Stderr, "proposal-calibrate: -grid must be > 0")
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "proposal-calibrate: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := proposal.New(proposal.WithCoordinatesPath(*coords), proposal.WithLogger(logger))
	out, err := gen.CalibrateFile(ctx, proposal.CalibrationRequest{
		TemplatePath: *template,
		OutputPath:   *output,
		Options: pageops.CalibrationOptions{
			Grid:     *grid,
			NoGrid:   *noGrid,
			NoLabels: *noLabels,
		},
	})
	if err != nil {
		logger.Error("calibration failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "proposal-calibrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
