// Command proposal-server runs the proposal upload service.
//
// Usage:
//
//	proposal-server                           # defaults, listen on :8080
//	proposal-server -config configs/server.yaml
//
// MAX_DOWNLOAD_MB and LISTEN_ADDR override the config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cstone-estimating/proposal/internal/logging"
	"github.com/cstone-estimating/proposal/server"
)

func main() {
	configPath := flag.String("config", "", "path to server.yaml (optional)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "proposal-server: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("proposal-server: fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, configPath string) error {
	cfg := server.DefaultConfig()
	if configPath != "" {
		loaded, err := server.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	logger.Info("config loaded",
		zap.String("listen", cfg.Listen),
		zap.String("mapping", cfg.DefaultMappingPath),
		zap.String("coordinates", cfg.DefaultCoordsPath),
		zap.Float64("max_download_mb", cfg.MaxDownloadMB))

	return server.New(cfg, logger).ListenAndServe(ctx)
}
